package sequence_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/events"
	"github.com/nordviken/onboarding-backend/internal/application/sequence"
	"github.com/nordviken/onboarding-backend/internal/domain/entity"
	"github.com/oapi-codegen/runtime/types"
	"github.com/stretchr/testify/require"
)

func minimalEvent() *events.OnboardingSubmitted {
	return &events.OnboardingSubmitted{
		SubmissionID: uuid.New(),
		CreatorID:    uuid.New(),
		Customer:     entity.CustomerPayload{Code: "CU-1", NationalID: "900101-1234", Email: types.Email("anna@example.com")},
		Account:      entity.AccountPayload{Code: "AC-1"},
		Portfolio:    entity.PortfolioPayload{Code: "PF-1", AccountCode: "AC-1"},
		Subscriptions: []entity.SubscriptionPayload{
			{Code: "PF-1-MGMT", PortfolioCode: "PF-1"},
		},
		CreatedAt: time.Now(),
	}
}

func TestNewResultSeedsStepsNotExecuted(t *testing.T) {
	ev := minimalEvent()
	ev.PortalUser = &entity.PortalUserPayload{NationalID: ev.Customer.NationalID}
	ev.BankAccount = &entity.BankAccountPayload{AccountCode: "AC-1"}
	ev.Mandate = &entity.MandatePayload{Code: "MD-1"}
	ev.Instructions = []entity.InstructionPayload{{Code: "PI-1"}}

	r := sequence.NewResult(ev)

	require.Equal(t, consts.StepNotExecuted, r.CustomerCreation.Status)
	require.NotNil(t, r.PortalUserRegistration)
	require.Equal(t, consts.StepNotExecuted, r.PortalUserRegistration.Status)
	require.Len(t, r.SubscriptionCreations, 1)
	require.Equal(t, "PF-1-MGMT", r.SubscriptionCreations[0].Payload.Code)
	require.NotNil(t, r.BankAccountCreation)
	require.NotNil(t, r.MandateCreation)
	require.Len(t, r.InstructionCreations, 1)
	require.False(t, r.Completed())
}

func TestDeriveStatusUnresolvedCustomer(t *testing.T) {
	r := sequence.NewResult(minimalEvent())
	r.CustomerCreation.Status = consts.StepError

	require.Equal(t, consts.StatusPending, sequence.DeriveStatus(r, true))
	require.Equal(t, consts.StatusFailed, sequence.DeriveStatus(r, false))
}

func TestDeriveStatusCompletedRun(t *testing.T) {
	r := sequence.NewResult(minimalEvent())
	r.CustomerCreation.Status = consts.StepSuccess
	r.AccountCreation.Status = consts.StepSkipped
	r.PortfolioCreation.Status = consts.StepSuccess
	r.SubscriptionCreations[0].Status = consts.StepSuccess

	require.True(t, r.Completed())
	require.Equal(t, consts.StatusSuccess, sequence.DeriveStatus(r, true))
	require.Equal(t, consts.StatusSuccess, sequence.DeriveStatus(r, false))
}

func TestDeriveStatusIncompleteDownstream(t *testing.T) {
	r := sequence.NewResult(minimalEvent())
	r.CustomerCreation.Status = consts.StepSuccess
	r.AccountCreation.Status = consts.StepSuccess
	r.PortfolioCreation.Status = consts.StepFailed

	require.Equal(t, consts.StatusPending, sequence.DeriveStatus(r, true))
	require.Equal(t, consts.StatusPartialFailure, sequence.DeriveStatus(r, false))
}

func TestCanProceedOnlyForSuccessAndSkipped(t *testing.T) {
	proceed := map[consts.StepStatus]bool{
		consts.StepSuccess:     true,
		consts.StepSkipped:     true,
		consts.StepNotExecuted: false,
		consts.StepError:       false,
		consts.StepFailed:      false,
		consts.StepAborted:     false,
	}
	for status, want := range proceed {
		step := sequence.ExecutionResult[string, string]{Status: status}
		require.Equal(t, want, step.CanProceed(), "status %s", status)
	}
}
