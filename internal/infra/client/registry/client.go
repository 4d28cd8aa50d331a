package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrNotFound = errors.New("not found in registry")

// Client looks persons and companies up in the population/company registry.
// Lookups are enrichment only; callers treat failures as non-fatal.
type Client struct {
	cfg    *Config
	tokens *TokenCache
	client *http.Client
}

type Person struct {
	NationalID string `json:"nationalId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

type Company struct {
	OrgNumber  string `json:"orgNumber"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

func NewClient(cfg *Config, tokens *TokenCache) *Client {
	return &Client{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) LookupPerson(ctx context.Context, personalNumber string) (*Person, error) {
	var person Person
	if err := c.get(ctx, "/persons/"+url.PathEscape(personalNumber), &person); err != nil {
		return nil, err
	}
	return &person, nil
}

func (c *Client) LookupCompany(ctx context.Context, orgNumber string) (*Company, error) {
	var company Company
	if err := c.get(ctx, "/companies/"+url.PathEscape(orgNumber), &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("registry returned %d", resp.StatusCode)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding registry response, %v", err)
	}
	return nil
}
