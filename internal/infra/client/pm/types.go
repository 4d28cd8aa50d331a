package pm

import (
	"github.com/nordviken/onboarding-backend/internal/domain/consts"
	"github.com/shopspring/decimal"
)

// Responses returned by the portfolio-management backend. ID is the numeric
// identifier the backend assigns on creation; Code is the caller-supplied one.

type CustomerResponse struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	NationalID string `json:"nationalId"`
	Name       string `json:"name,omitempty"`
}

type PortalUserResponse struct {
	ID         int64  `json:"id"`
	NationalID string `json:"nationalId"`
	Email      string `json:"email,omitempty"`
}

type AccountResponse struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label,omitempty"`
}

type PortfolioResponse struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Label string `json:"label,omitempty"`
}

type SubscriptionResponse struct {
	ID       int64           `json:"id"`
	Code     string          `json:"code"`
	FeeType  consts.FeeType  `json:"feeType"`
	Fraction decimal.Decimal `json:"fraction"`
}

type BankAccountResponse struct {
	ID             int64  `json:"id"`
	Code           string `json:"code"`
	ClearingNumber string `json:"clearingNumber,omitempty"`
	AccountNumber  string `json:"accountNumber,omitempty"`
}

type MandateResponse struct {
	ID     int64                `json:"id"`
	Code   string               `json:"code"`
	Status consts.MandateStatus `json:"status"`
}

type InstructionResponse struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}
