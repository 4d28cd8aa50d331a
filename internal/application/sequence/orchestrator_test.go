package sequence_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/events"
	"github.com/nordviken/onboarding-backend/internal/application/sequence"
	domain "github.com/nordviken/onboarding-backend/internal/domain/consts"
	"github.com/nordviken/onboarding-backend/internal/domain/entity"
	"github.com/nordviken/onboarding-backend/internal/infra/client/pm"
	"github.com/stretchr/testify/require"
)

// fakeBackend scripts the portfolio-management API per route and records how
// often each route was hit.
type fakeBackend struct {
	mu       sync.Mutex
	hits     map[string]int
	handlers map[string]http.HandlerFunc
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		hits:     make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}
}

func (f *fakeBackend) on(method, path string, handler http.HandlerFunc) {
	f.handlers[method+" "+path] = handler
}

func (f *fakeBackend) respond(method, path string, status int, body any) {
	f.on(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		if body != nil {
			_ = json.NewEncoder(w).Encode(body)
		}
	})
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.hits[key]++
	f.mu.Unlock()
	if h, ok := f.handlers[key]; ok {
		h(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (f *fakeBackend) hitCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

func newOrchestrator(t *testing.T, backend *fakeBackend) *sequence.Orchestrator {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	cfg, err := pm.NewConfigFromURL(server.URL)
	require.NoError(t, err)
	return sequence.NewOrchestrator(pm.NewClient(cfg))
}

func fullEvent() *events.OnboardingSubmitted {
	ev := minimalEvent()
	ev.PortalUser = &entity.PortalUserPayload{NationalID: ev.Customer.NationalID, Email: ev.Customer.Email}
	ev.BankAccount = &entity.BankAccountPayload{
		AccountCode:    "AC-1",
		ClearingNumber: "8327",
		AccountNumber:  "9942312",
	}
	ev.Mandate = &entity.MandatePayload{Code: "MD-1"}
	ev.Instructions = []entity.InstructionPayload{
		{Code: "PI-1", Type: domain.InstructionTypeMonthly},
		{Code: "PI-2", Type: domain.InstructionTypeOneOff},
	}
	return ev
}

func scriptHappyPath(backend *fakeBackend) {
	backend.respond(http.MethodGet, "/customers", http.StatusNotFound, nil)
	backend.respond(http.MethodPost, "/customers", http.StatusCreated, pm.CustomerResponse{ID: 1, Code: "CU-1"})
	backend.respond(http.MethodPost, "/portal-users", http.StatusCreated, pm.PortalUserResponse{ID: 2})
	backend.respond(http.MethodPost, "/accounts", http.StatusCreated, pm.AccountResponse{ID: 3, Code: "AC-1"})
	backend.respond(http.MethodPost, "/portfolios", http.StatusCreated, pm.PortfolioResponse{ID: 4, Code: "PF-1"})
	backend.respond(http.MethodGet, "/portfolios/PF-1/subscriptions", http.StatusNotFound, nil)
	backend.respond(http.MethodPost, "/subscriptions", http.StatusCreated, pm.SubscriptionResponse{ID: 5, Code: "PF-1-MGMT"})
	backend.respond(http.MethodPost, "/bank-accounts", http.StatusCreated, pm.BankAccountResponse{ID: 6, Code: "BA-1"})
	backend.respond(http.MethodGet, "/bank-accounts/BA-1/mandates", http.StatusNotFound, nil)
	backend.respond(http.MethodPost, "/mandates", http.StatusCreated, pm.MandateResponse{ID: 7, Code: "MD-1"})
	backend.respond(http.MethodPost, "/payment-instructions", http.StatusCreated, pm.InstructionResponse{ID: 8})
}

func TestRunHappyPath(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	orchestrator := newOrchestrator(t, backend)

	r := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepSuccess, r.CustomerCreation.Status)
	require.Equal(t, consts.StepSuccess, r.PortalUserRegistration.Status)
	require.Equal(t, consts.StepSuccess, r.AccountCreation.Status)
	require.Equal(t, consts.StepSuccess, r.PortfolioCreation.Status)
	require.Equal(t, consts.StepSuccess, r.SubscriptionCreations[0].Status)
	require.Equal(t, consts.StepSuccess, r.BankAccountCreation.Status)
	require.Equal(t, consts.StepSuccess, r.MandateCreation.Status)
	for _, instruction := range r.InstructionCreations {
		require.Equal(t, consts.StepSuccess, instruction.Status)
	}
	require.True(t, r.Completed())
	require.Equal(t, "CU-1", r.CustomerCode)
	require.Equal(t, "BA-1", r.BankAccountCode)
	require.Equal(t, "MD-1", r.MandateCode)
	require.Equal(t, 2, backend.hitCount(http.MethodPost, "/payment-instructions"))
}

func TestRunExistingCustomerIsSkipped(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	backend.respond(http.MethodGet, "/customers", http.StatusOK, pm.CustomerResponse{ID: 9, Code: "CU-EXISTING"})

	orchestrator := newOrchestrator(t, backend)
	r := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepSkipped, r.CustomerCreation.Status)
	require.NotNil(t, r.CustomerCreation.SkippedOn)
	require.Equal(t, "CU-EXISTING", r.CustomerCreation.SkippedOn.Code)
	require.Equal(t, "CU-EXISTING", r.CustomerCode)
	require.Zero(t, backend.hitCount(http.MethodPost, "/customers"))
	require.True(t, r.Completed())
}

func TestRunSecondDeliveryCreatesNothingTwice(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	orchestrator := newOrchestrator(t, backend)

	first := orchestrator.Run(context.Background(), fullEvent())
	require.True(t, first.Completed())

	// upstream now holds every entity: lookups find them, creates conflict
	backend.respond(http.MethodGet, "/customers", http.StatusOK, pm.CustomerResponse{ID: 1, Code: "CU-1"})
	backend.respond(http.MethodPost, "/portal-users", http.StatusConflict, pm.PortalUserResponse{ID: 2})
	backend.respond(http.MethodPost, "/accounts", http.StatusConflict, pm.AccountResponse{ID: 3, Code: "AC-1"})
	backend.respond(http.MethodPost, "/portfolios", http.StatusConflict, pm.PortfolioResponse{ID: 4, Code: "PF-1"})
	backend.respond(http.MethodGet, "/portfolios/PF-1/subscriptions", http.StatusOK,
		[]pm.SubscriptionResponse{{ID: 5, Code: "PF-1-MGMT"}})
	backend.respond(http.MethodPost, "/bank-accounts", http.StatusConflict, nil)
	backend.respond(http.MethodGet, "/bank-accounts", http.StatusOK, pm.BankAccountResponse{ID: 6, Code: "BA-1"})
	backend.respond(http.MethodGet, "/bank-accounts/BA-1/mandates", http.StatusOK,
		[]pm.MandateResponse{{ID: 7, Code: "MD-1", Status: domain.MandateStatusCreated}})
	backend.respond(http.MethodPost, "/payment-instructions", http.StatusConflict, nil)

	second := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepSkipped, second.CustomerCreation.Status)
	require.Equal(t, consts.StepSkipped, second.PortalUserRegistration.Status)
	require.Equal(t, consts.StepSkipped, second.AccountCreation.Status)
	require.Equal(t, consts.StepSkipped, second.PortfolioCreation.Status)
	require.Equal(t, consts.StepSkipped, second.SubscriptionCreations[0].Status)
	require.Equal(t, consts.StepSkipped, second.BankAccountCreation.Status)
	require.Equal(t, consts.StepSkipped, second.MandateCreation.Status)
	for _, instruction := range second.InstructionCreations {
		require.Equal(t, consts.StepSkipped, instruction.Status)
	}
	require.True(t, second.Completed())
	require.Equal(t, consts.StatusSuccess, sequence.DeriveStatus(second, false))

	require.Equal(t, "CU-1", second.CustomerCode)
	require.Equal(t, "BA-1", second.BankAccountCode)
	require.Equal(t, "MD-1", second.MandateCode)

	// lookup-guarded steps never re-post; the rest post once more and are
	// answered with a conflict
	require.Equal(t, 1, backend.hitCount(http.MethodPost, "/customers"))
	require.Equal(t, 1, backend.hitCount(http.MethodPost, "/subscriptions"))
	require.Equal(t, 1, backend.hitCount(http.MethodPost, "/mandates"))
	require.Equal(t, 2, backend.hitCount(http.MethodPost, "/accounts"))
	require.Equal(t, 2, backend.hitCount(http.MethodPost, "/portfolios"))
	require.Equal(t, 4, backend.hitCount(http.MethodPost, "/payment-instructions"))
}

func TestRunHaltsOnPortfolioFailure(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	backend.respond(http.MethodPost, "/portfolios", http.StatusUnprocessableEntity, nil)

	orchestrator := newOrchestrator(t, backend)
	r := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepFailed, r.PortfolioCreation.Status)
	require.Equal(t, consts.StepNotExecuted, r.SubscriptionCreations[0].Status)
	require.Equal(t, consts.StepNotExecuted, r.BankAccountCreation.Status)
	require.Equal(t, consts.StepNotExecuted, r.MandateCreation.Status)
	require.Zero(t, backend.hitCount(http.MethodPost, "/subscriptions"))
	require.False(t, r.Completed())
}

func TestRunAccountConflictIsSkip(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	backend.respond(http.MethodPost, "/accounts", http.StatusConflict, pm.AccountResponse{ID: 33, Code: "AC-1"})

	orchestrator := newOrchestrator(t, backend)
	r := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepSkipped, r.AccountCreation.Status)
	require.NotNil(t, r.AccountCreation.SkippedOn)
	require.Equal(t, int64(33), r.AccountCreation.SkippedOn.ID)
	require.True(t, r.Completed())
}

func TestRunSkipsSubscriptionsAlreadyPresent(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	backend.respond(http.MethodGet, "/portfolios/PF-1/subscriptions", http.StatusOK,
		[]pm.SubscriptionResponse{{ID: 5, Code: "PF-1-MGMT"}})

	orchestrator := newOrchestrator(t, backend)
	r := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepSkipped, r.SubscriptionCreations[0].Status)
	require.Zero(t, backend.hitCount(http.MethodPost, "/subscriptions"))
	require.True(t, r.Completed())
}

func TestRunSubscriptionFetchErrorFailsAllLines(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	backend.respond(http.MethodGet, "/portfolios/PF-1/subscriptions", http.StatusInternalServerError, nil)

	orchestrator := newOrchestrator(t, backend)
	r := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepError, r.SubscriptionCreations[0].Status)
	require.Contains(t, r.SubscriptionCreations[0].Message, "could not be fetched")
	require.Equal(t, consts.StepNotExecuted, r.BankAccountCreation.Status)
}

func TestRunBankAccountConflictRefetchesExisting(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	backend.respond(http.MethodPost, "/bank-accounts", http.StatusConflict, nil)
	backend.respond(http.MethodGet, "/bank-accounts", http.StatusOK, pm.BankAccountResponse{ID: 6, Code: "BA-EXISTING"})
	backend.respond(http.MethodGet, "/bank-accounts/BA-EXISTING/mandates", http.StatusNotFound, nil)

	orchestrator := newOrchestrator(t, backend)
	r := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepSkipped, r.BankAccountCreation.Status)
	require.Equal(t, "BA-EXISTING", r.BankAccountCode)
	require.Equal(t, consts.StepSuccess, r.MandateCreation.Status)
	require.True(t, r.Completed())
}

func TestRunBankAccountConflictRefetchFailureIsError(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	backend.respond(http.MethodPost, "/bank-accounts", http.StatusConflict, nil)
	backend.respond(http.MethodGet, "/bank-accounts", http.StatusInternalServerError, nil)

	orchestrator := newOrchestrator(t, backend)
	r := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepError, r.BankAccountCreation.Status)
	require.Contains(t, r.BankAccountCreation.Message, "could not be fetched after conflict")
	require.Equal(t, consts.StepNotExecuted, r.MandateCreation.Status)
	require.False(t, r.Completed())
}

func TestRunReusesActiveMandate(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	backend.respond(http.MethodGet, "/bank-accounts/BA-1/mandates", http.StatusOK,
		[]pm.MandateResponse{
			{ID: 1, Code: "MD-OLD", Status: domain.MandateStatusCancelled},
			{ID: 2, Code: "MD-ACTIVE", Status: domain.MandateStatusActive},
		})

	orchestrator := newOrchestrator(t, backend)
	r := orchestrator.Run(context.Background(), fullEvent())

	require.Equal(t, consts.StepSkipped, r.MandateCreation.Status)
	require.Equal(t, "MD-ACTIVE", r.MandateCode)
	require.Zero(t, backend.hitCount(http.MethodPost, "/mandates"))
	require.True(t, r.Completed())
}

func TestRunCancelledContextAborts(t *testing.T) {
	backend := newFakeBackend()
	scriptHappyPath(backend)
	orchestrator := newOrchestrator(t, backend)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := orchestrator.Run(ctx, fullEvent())

	require.Equal(t, consts.StepAborted, r.CustomerCreation.Status)
	require.Equal(t, consts.StepNotExecuted, r.AccountCreation.Status)
	require.Equal(t, consts.StatusPending, sequence.DeriveStatus(r, true))
	require.Equal(t, consts.StatusFailed, sequence.DeriveStatus(r, false))
}
