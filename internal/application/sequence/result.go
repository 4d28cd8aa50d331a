package sequence

import (
	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/events"
	"github.com/nordviken/onboarding-backend/internal/domain/entity"
	"github.com/nordviken/onboarding-backend/internal/infra/client/pm"
)

// ExecutionResult records one creation step: the payload sent (or attempted),
// the upstream response, and the terminal status. A step whose target already
// existed carries the pre-existing entity in SkippedOn.
type ExecutionResult[P any, R any] struct {
	Status     consts.StepStatus `json:"status"`
	StatusCode int               `json:"statusCode,omitempty"`
	Response   *R                `json:"response,omitempty"`
	SkippedOn  *R                `json:"skippedOn,omitempty"`
	Payload    P                 `json:"payload"`
	Message    string            `json:"message,omitempty"`
}

// CanProceed reports whether the sequence may continue past this step.
// Skipped and Success are both forward progress.
func (e ExecutionResult[P, R]) CanProceed() bool {
	return e.Status == consts.StepSuccess || e.Status == consts.StepSkipped
}

// Result is the ordered aggregate of every step of one creation run, plus
// the cross-step codes resolved along the way.
type Result struct {
	CustomerCreation       ExecutionResult[entity.CustomerPayload, pm.CustomerResponse]      `json:"customerCreation"`
	PortalUserRegistration *ExecutionResult[entity.PortalUserPayload, pm.PortalUserResponse] `json:"portalUserRegistration,omitempty"`
	AccountCreation        ExecutionResult[entity.AccountPayload, pm.AccountResponse]        `json:"accountCreation"`
	PortfolioCreation      ExecutionResult[entity.PortfolioPayload, pm.PortfolioResponse]    `json:"portfolioCreation"`
	SubscriptionCreations  []ExecutionResult[entity.SubscriptionPayload, pm.SubscriptionResponse] `json:"subscriptionCreations"`
	BankAccountCreation    *ExecutionResult[entity.BankAccountPayload, pm.BankAccountResponse]    `json:"bankAccountCreation,omitempty"`
	MandateCreation        *ExecutionResult[entity.MandatePayload, pm.MandateResponse]            `json:"mandateCreation,omitempty"`
	InstructionCreations   []ExecutionResult[entity.InstructionPayload, pm.InstructionResponse]   `json:"instructionCreations,omitempty"`

	CustomerCode    string `json:"customerCode,omitempty"`
	BankAccountCode string `json:"bankAccountCode,omitempty"`
	MandateCode     string `json:"mandateCode,omitempty"`
}

// NewResult seeds every step with its payload in the NotExecuted state, so a
// halted run still reports which payloads were never attempted.
func NewResult(ev *events.OnboardingSubmitted) *Result {
	r := &Result{
		CustomerCreation:  notExecuted[entity.CustomerPayload, pm.CustomerResponse](ev.Customer),
		AccountCreation:   notExecuted[entity.AccountPayload, pm.AccountResponse](ev.Account),
		PortfolioCreation: notExecuted[entity.PortfolioPayload, pm.PortfolioResponse](ev.Portfolio),
	}
	if ev.PortalUser != nil {
		step := notExecuted[entity.PortalUserPayload, pm.PortalUserResponse](*ev.PortalUser)
		r.PortalUserRegistration = &step
	}
	for _, sub := range ev.Subscriptions {
		r.SubscriptionCreations = append(r.SubscriptionCreations,
			notExecuted[entity.SubscriptionPayload, pm.SubscriptionResponse](sub))
	}
	if ev.BankAccount != nil {
		step := notExecuted[entity.BankAccountPayload, pm.BankAccountResponse](*ev.BankAccount)
		r.BankAccountCreation = &step
	}
	if ev.Mandate != nil {
		step := notExecuted[entity.MandatePayload, pm.MandateResponse](*ev.Mandate)
		r.MandateCreation = &step
	}
	for _, instruction := range ev.Instructions {
		r.InstructionCreations = append(r.InstructionCreations,
			notExecuted[entity.InstructionPayload, pm.InstructionResponse](instruction))
	}
	return r
}

func notExecuted[P any, R any](payload P) ExecutionResult[P, R] {
	return ExecutionResult[P, R]{
		Status:  consts.StepNotExecuted,
		Payload: payload,
	}
}

// Completed reports whether every step present in the run reached Success or
// Skipped.
func (r *Result) Completed() bool {
	if !r.CustomerCreation.CanProceed() {
		return false
	}
	if r.PortalUserRegistration != nil && !r.PortalUserRegistration.CanProceed() {
		return false
	}
	if !r.AccountCreation.CanProceed() || !r.PortfolioCreation.CanProceed() {
		return false
	}
	for _, sub := range r.SubscriptionCreations {
		if !sub.CanProceed() {
			return false
		}
	}
	if r.BankAccountCreation != nil && !r.BankAccountCreation.CanProceed() {
		return false
	}
	if r.MandateCreation != nil && !r.MandateCreation.CanProceed() {
		return false
	}
	for _, instruction := range r.InstructionCreations {
		if !instruction.CanProceed() {
			return false
		}
	}
	return true
}

// DeriveStatus classifies a finished run for the caller. A run is only
// terminally Failed or PartialFailure once the delivery boundary has no
// redeliveries left; until then an incomplete run stays Pending.
func DeriveStatus(r *Result, retriesLeft bool) consts.SubmissionStatus {
	if !r.CustomerCreation.CanProceed() {
		if retriesLeft {
			return consts.StatusPending
		}
		return consts.StatusFailed
	}
	if r.Completed() {
		return consts.StatusSuccess
	}
	if retriesLeft {
		return consts.StatusPending
	}
	return consts.StatusPartialFailure
}
