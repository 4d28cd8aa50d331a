package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/internal/domain/entity"
)

// OnboardingSubmitted carries every pre-built creation payload for one
// submission. It is delivered at least once; the creation sequence relies on
// natural-key conflicts upstream to stay idempotent across redeliveries.
type OnboardingSubmitted struct {
	SubmissionID  uuid.UUID                    `json:"submissionId"`
	CreatorID     uuid.UUID                    `json:"creatorId"`
	Customer      entity.CustomerPayload       `json:"customer"`
	PortalUser    *entity.PortalUserPayload    `json:"portalUser,omitempty"`
	Account       entity.AccountPayload        `json:"account"`
	Portfolio     entity.PortfolioPayload      `json:"portfolio"`
	Subscriptions []entity.SubscriptionPayload `json:"subscriptions"`
	BankAccount   *entity.BankAccountPayload   `json:"bankAccount,omitempty"`
	Mandate       *entity.MandatePayload       `json:"mandate,omitempty"`
	Instructions  []entity.InstructionPayload  `json:"instructions,omitempty"`
	CreatedAt     time.Time                    `json:"createdAt"`
}

func (e OnboardingSubmitted) GetType() string {
	return "OnboardingSubmitted"
}

type SendMail struct {
	Email   string      `json:"email"`
	Subject string      `json:"subject"`
	Data    interface{} `json:"data"`
}

func (e SendMail) GetType() string {
	return "SendMail"
}
