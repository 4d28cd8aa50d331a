package pm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nordviken/onboarding-backend/internal/domain/entity"
)

// Client is a thin typed layer over the portfolio-management backend.
// Every call honors ctx cancellation and returns a classified Result.
type Client struct {
	cfg    *Config
	client *http.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config,
		&http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
			},
		},
	}
}

func (c *Client) GetCustomerByNationalID(ctx context.Context, nationalID string) Result[CustomerResponse] {
	return call[CustomerResponse](ctx, c, http.MethodGet, "/customers?nationalId="+url.QueryEscape(nationalID), nil)
}

func (c *Client) CreateCustomer(ctx context.Context, payload entity.CustomerPayload) Result[CustomerResponse] {
	return call[CustomerResponse](ctx, c, http.MethodPost, "/customers", payload)
}

func (c *Client) RegisterPortalUser(ctx context.Context, payload entity.PortalUserPayload) Result[PortalUserResponse] {
	return call[PortalUserResponse](ctx, c, http.MethodPost, "/portal-users", payload)
}

func (c *Client) CreateAccount(ctx context.Context, payload entity.AccountPayload) Result[AccountResponse] {
	return call[AccountResponse](ctx, c, http.MethodPost, "/accounts", payload)
}

func (c *Client) CreatePortfolio(ctx context.Context, payload entity.PortfolioPayload) Result[PortfolioResponse] {
	return call[PortfolioResponse](ctx, c, http.MethodPost, "/portfolios", payload)
}

func (c *Client) GetSubscriptions(ctx context.Context, portfolioCode string) Result[[]SubscriptionResponse] {
	return call[[]SubscriptionResponse](ctx, c, http.MethodGet, "/portfolios/"+url.PathEscape(portfolioCode)+"/subscriptions", nil)
}

func (c *Client) CreateSubscription(ctx context.Context, payload entity.SubscriptionPayload) Result[SubscriptionResponse] {
	return call[SubscriptionResponse](ctx, c, http.MethodPost, "/subscriptions", payload)
}

func (c *Client) CreateBankAccount(ctx context.Context, payload entity.BankAccountPayload) Result[BankAccountResponse] {
	return call[BankAccountResponse](ctx, c, http.MethodPost, "/bank-accounts", payload)
}

func (c *Client) GetBankAccount(ctx context.Context, customerCode, accountCode, clearingNumber string) Result[BankAccountResponse] {
	query := url.Values{}
	query.Set("customerCode", customerCode)
	query.Set("accountCode", accountCode)
	query.Set("clearingNumber", clearingNumber)
	return call[BankAccountResponse](ctx, c, http.MethodGet, "/bank-accounts?"+query.Encode(), nil)
}

func (c *Client) GetMandates(ctx context.Context, bankAccountCode string) Result[[]MandateResponse] {
	return call[[]MandateResponse](ctx, c, http.MethodGet, "/bank-accounts/"+url.PathEscape(bankAccountCode)+"/mandates", nil)
}

func (c *Client) CreateMandate(ctx context.Context, payload entity.MandatePayload) Result[MandateResponse] {
	return call[MandateResponse](ctx, c, http.MethodPost, "/mandates", payload)
}

func (c *Client) CreateInstruction(ctx context.Context, payload entity.InstructionPayload) Result[InstructionResponse] {
	return call[InstructionResponse](ctx, c, http.MethodPost, "/payment-instructions", payload)
}

func call[T any](ctx context.Context, c *Client, method, path string, payload any) Result[T] {
	var out Result[T]

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			out.Status = StatusError
			out.Err = fmt.Errorf("marshalling request, %v", err)
			return out
		}
		body = bytes.NewBuffer(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.getURL()+path, body)
	if err != nil {
		out.Status = StatusError
		out.Err = err
		return out
	}
	request.Header.Set("Content-Type", "application/json")
	if c.cfg.apiKey != "" {
		request.Header.Set("X-Api-Key", c.cfg.apiKey)
	}

	resp, err := c.client.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			out.Status = StatusAborted
			out.Err = ctx.Err()
			return out
		}
		out.Status = StatusError
		out.Err = err
		return out
	}
	defer resp.Body.Close()

	out.StatusCode = resp.StatusCode
	out.Status = Classify(resp.StatusCode)

	switch out.Status {
	case StatusSuccess, StatusConflict:
		if err = json.NewDecoder(resp.Body).Decode(&out.Body); err != nil && err != io.EOF {
			if ctx.Err() != nil {
				out.Status = StatusAborted
				out.Err = ctx.Err()
				return out
			}
			out.Status = StatusError
			out.Err = fmt.Errorf("decoding response, %v", err)
		}
	default:
		data, _ := io.ReadAll(resp.Body)
		out.Err = fmt.Errorf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return out
}

func (c *Client) getURL() string {
	return fmt.Sprintf("%v://%v:%v", c.cfg.schema, c.cfg.host, c.cfg.port)
}
