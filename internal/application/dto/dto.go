package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"
)

type OnboardingRequest struct {
	IsCompany          bool            `json:"isCompany"`
	PersonalNumber     string          `json:"personalNumber,omitempty" validate:"required_if=IsCompany false,omitempty,min=10,max=13"`
	OrgNumber          string          `json:"orgNumber,omitempty" validate:"required_if=IsCompany true,omitempty,min=10,max=13"`
	FirstName          string          `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName           string          `json:"lastName,omitempty" validate:"omitempty,max=100"`
	CompanyName        string          `json:"companyName,omitempty" validate:"omitempty,max=200"`
	Email              types.Email     `json:"email" validate:"required,email"`
	PortfolioTypeCode  string          `json:"portfolioTypeCode" validate:"required,max=16"`
	ModelPortfolioCode string          `json:"modelPortfolioCode,omitempty" validate:"omitempty,max=32"`
	FeeSubscription    float64         `json:"feeSubscription" validate:"gte=0,lte=5"`
	Currency           string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Payment            *PaymentDetails `json:"payment,omitempty"`
}

type PaymentDetails struct {
	ClearingNumber string  `json:"clearingNumber" validate:"required,numeric,min=4,max=5"`
	AccountNumber  string  `json:"accountNumber" validate:"required,numeric,min=7,max=10"`
	Bank           string  `json:"bank,omitempty" validate:"omitempty,max=100"`
	MonthlyAmount  float64 `json:"monthlyAmount" validate:"gt=0"`
	InitialAmount  float64 `json:"initialAmount,omitempty" validate:"gte=0"`
	DebitDay       int     `json:"debitDay" validate:"gte=1,lte=28"`
}

type SubmitOnboardingResponse struct {
	SubmissionID string `json:"submissionId"`
}

type SubmissionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	RequestType string          `json:"requestType"`
	RequestBody json.RawMessage `json:"requestBody,omitempty"`
	Messages    string          `json:"messages,omitempty"`
	DataType    string          `json:"dataType,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	CreatedBy   uuid.UUID       `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ListSubmissionsParams struct {
	CreatedBy  *uuid.UUID `json:"createdBy,omitempty"`
	Status     string     `json:"status,omitempty"`
	NationalID string     `json:"nationalId,omitempty"`
	Page       int        `json:"page,omitempty"`
	Limit      int        `json:"limit,omitempty"`
}

type ListSubmissionsResponse struct {
	Items []SubmissionResponse `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

type DocumentUploadedResponse struct {
	DocumentID  string `json:"documentId"`
	DocumentURL string `json:"documentUrl"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
