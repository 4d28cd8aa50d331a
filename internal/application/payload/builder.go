package payload

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/dto"
	"github.com/nordviken/onboarding-backend/internal/application/events"
	"github.com/nordviken/onboarding-backend/internal/application/interfaces"
	domain "github.com/nordviken/onboarding-backend/internal/domain/consts"
	"github.com/nordviken/onboarding-backend/internal/domain/entity"
	"github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// contributionFeeFraction is the fixed contribution fee paired with the
// management fee when no model portfolio is selected.
var contributionFeeFraction = decimal.NewFromFloat(0.25)

// Builder turns a validated onboarding request into the full payload set the
// creation sequence needs. Codes are fresh per call; conflict detection
// downstream relies on natural keys, not on these codes.
type Builder struct {
	sequences interfaces.Sequences
}

func NewBuilder(sequences interfaces.Sequences) *Builder {
	return &Builder{sequences: sequences}
}

func (b *Builder) Build(ctx context.Context, req dto.OnboardingRequest, creator uuid.UUID) (*events.OnboardingSubmitted, error) {
	customer, err := buildCustomer(req)
	if err != nil {
		return nil, err
	}

	seq, err := b.sequences.Increment(ctx, consts.CounterAccountNumber)
	if err != nil {
		return nil, fmt.Errorf("incrementing account sequence, %v", err)
	}
	label := fmt.Sprintf("%s %d", req.PortfolioTypeCode, seq)

	currency := req.Currency
	if currency == "" {
		currency = "SEK"
	}

	accountCode := newCode("AC")
	portfolioCode := newCode("PF")

	event := &events.OnboardingSubmitted{
		SubmissionID: uuid.New(),
		CreatorID:    creator,
		Customer:     customer,
		Account: entity.AccountPayload{
			Code:     accountCode,
			Label:    label,
			Currency: currency,
		},
		Portfolio: entity.PortfolioPayload{
			Code:               portfolioCode,
			Label:              label,
			AccountCode:        accountCode,
			TypeCode:           req.PortfolioTypeCode,
			ModelPortfolioCode: req.ModelPortfolioCode,
		},
		Subscriptions: buildFeeLines(req, portfolioCode),
		CreatedAt:     time.Now(),
	}

	if !req.IsCompany {
		event.PortalUser = &entity.PortalUserPayload{
			NationalID: customer.NationalID,
			Email:      req.Email,
		}
	}

	if req.Payment != nil {
		event.BankAccount = &entity.BankAccountPayload{
			AccountCode:    accountCode,
			ClearingNumber: req.Payment.ClearingNumber,
			AccountNumber:  req.Payment.AccountNumber,
			Bank:           req.Payment.Bank,
		}
		event.Mandate = &entity.MandatePayload{
			Code: newCode("MD"),
		}
		event.Instructions = buildInstructions(req.Payment, currency)
	}

	return event, nil
}

func buildCustomer(req dto.OnboardingRequest) (entity.CustomerPayload, error) {
	customer := entity.CustomerPayload{
		Code:  newCode("CU"),
		Email: req.Email,
	}

	if req.IsCompany {
		org, err := ParseOrgNumber(req.OrgNumber)
		if err != nil {
			return entity.CustomerPayload{}, err
		}
		customer.Type = domain.CustomerTypeCompany
		customer.NationalID = org.Canonical
		customer.Name = req.CompanyName
		return customer, nil
	}

	person, err := ParsePersonalNumber(req.PersonalNumber)
	if err != nil {
		return entity.CustomerPayload{}, err
	}
	customer.Type = domain.CustomerTypePrivate
	customer.NationalID = person.Canonical
	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.BirthDate = &types.Date{Time: person.BirthDate}
	return customer, nil
}

// buildFeeLines is mutually exclusive: a model portfolio yields exactly one
// performance-fee line, otherwise exactly a management and contribution pair.
func buildFeeLines(req dto.OnboardingRequest, portfolioCode string) []entity.SubscriptionPayload {
	fraction := decimal.NewFromFloat(req.FeeSubscription)
	if req.ModelPortfolioCode != "" {
		return []entity.SubscriptionPayload{
			{
				Code:          portfolioCode + "-PERF",
				PortfolioCode: portfolioCode,
				FeeType:       domain.FeeTypePerformance,
				Fraction:      fraction,
			},
		}
	}
	return []entity.SubscriptionPayload{
		{
			Code:          portfolioCode + "-MGMT",
			PortfolioCode: portfolioCode,
			FeeType:       domain.FeeTypeManagement,
			Fraction:      fraction,
		},
		{
			Code:          portfolioCode + "-CNTR",
			PortfolioCode: portfolioCode,
			FeeType:       domain.FeeTypeContribution,
			Fraction:      contributionFeeFraction,
		},
	}
}

func buildInstructions(payment *dto.PaymentDetails, currency string) []entity.InstructionPayload {
	instructions := []entity.InstructionPayload{
		{
			Code:     newCode("PI"),
			Type:     domain.InstructionTypeMonthly,
			Amount:   decimal.NewFromFloat(payment.MonthlyAmount),
			Currency: currency,
			DebitDay: payment.DebitDay,
		},
	}
	if payment.InitialAmount > 0 {
		instructions = append(instructions, entity.InstructionPayload{
			Code:     newCode("PI"),
			Type:     domain.InstructionTypeOneOff,
			Amount:   decimal.NewFromFloat(payment.InitialAmount),
			Currency: currency,
		})
	}
	return instructions
}

func newCode(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
