package entity

import (
	"github.com/nordviken/onboarding-backend/internal/domain/consts"
	"github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Creation payloads sent to the portfolio-management backend. Every payload
// carries a caller-generated Code; the backend assigns its own numeric id on
// creation and detects duplicates by natural key, not by Code.

type CustomerPayload struct {
	Code       string             `json:"code"`
	Type       consts.CustomerType `json:"type"`
	NationalID string             `json:"nationalId"`
	FirstName  string             `json:"firstName,omitempty"`
	LastName   string             `json:"lastName,omitempty"`
	Name       string             `json:"name,omitempty"`
	Email      types.Email        `json:"email"`
	BirthDate  *types.Date        `json:"birthDate,omitempty"`
}

type PortalUserPayload struct {
	NationalID   string      `json:"nationalId"`
	Email        types.Email `json:"email"`
	CustomerCode string      `json:"customerCode,omitempty"`
}

type AccountPayload struct {
	Code         string `json:"code"`
	Label        string `json:"label"`
	CustomerCode string `json:"customerCode,omitempty"`
	Currency     string `json:"currency"`
}

type PortfolioPayload struct {
	Code               string `json:"code"`
	Label              string `json:"label"`
	AccountCode        string `json:"accountCode"`
	CustomerCode       string `json:"customerCode,omitempty"`
	TypeCode           string `json:"typeCode"`
	ModelPortfolioCode string `json:"modelPortfolioCode,omitempty"`
}

type SubscriptionPayload struct {
	Code          string          `json:"code"`
	PortfolioCode string          `json:"portfolioCode"`
	FeeType       consts.FeeType  `json:"feeType"`
	Fraction      decimal.Decimal `json:"fraction"`
}

type BankAccountPayload struct {
	CustomerCode   string `json:"customerCode,omitempty"`
	AccountCode    string `json:"accountCode"`
	ClearingNumber string `json:"clearingNumber"`
	AccountNumber  string `json:"accountNumber"`
	Bank           string `json:"bank,omitempty"`
}

type MandatePayload struct {
	Code            string `json:"code"`
	BankAccountCode string `json:"bankAccountCode,omitempty"`
}

type InstructionPayload struct {
	Code        string                 `json:"code"`
	MandateCode string                 `json:"mandateCode,omitempty"`
	Type        consts.InstructionType `json:"type"`
	Amount      decimal.Decimal        `json:"amount"`
	Currency    string                 `json:"currency"`
	DebitDay    int                    `json:"debitDay,omitempty"`
}
