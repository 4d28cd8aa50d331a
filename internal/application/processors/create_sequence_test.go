package processors_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/errs"
	"github.com/nordviken/onboarding-backend/internal/application/events"
	"github.com/nordviken/onboarding-backend/internal/application/processors"
	"github.com/nordviken/onboarding-backend/internal/application/sequence"
	"github.com/nordviken/onboarding-backend/internal/domain/entity"
	"github.com/nordviken/onboarding-backend/internal/infra/client/pm"
	"github.com/nordviken/onboarding-backend/internal/infra/db"
	"github.com/nordviken/onboarding-backend/internal/infra/db/repo"
	"github.com/nordviken/onboarding-backend/internal/testinfra"
	dbs "github.com/nordviken/onboarding-backend/pkg/db"
	"github.com/stretchr/testify/require"
)

var uowFactory *dbs.UOWFactory

func TestMain(m *testing.M) {
	uowFactory = dbs.NewUoWFactory(testinfra.Pool)
	code := m.Run()
	_, _ = testinfra.Pool.Exec(context.Background(), "DELETE FROM onboarding.submissions; DELETE FROM onboarding.outbox")
	os.Exit(code)
}

func newProcessor(t *testing.T, upstream http.HandlerFunc) *processors.CreateSequence {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)
	cfg, err := pm.NewConfigFromURL(server.URL)
	require.NoError(t, err)
	return processors.NewCreateSequence(
		processors.SequenceConfig{Timeout: 10 * time.Second},
		uowFactory,
		sequence.NewOrchestrator(pm.NewClient(cfg)),
	)
}

func insertPendingSubmission(t *testing.T, event *events.OnboardingSubmitted) {
	t.Helper()
	uow := uowFactory.GetUoW()
	tx, err := uow.Begin()
	require.NoError(t, err)
	err = repo.NewSubmissionRepo(tx).Insert(context.Background(), db.Submission{
		ID:          event.SubmissionID,
		Status:      consts.StatusPending,
		RequestType: consts.RequestTypeOnboarding,
		RequestBody: []byte(`{}`),
		NationalID:  event.Customer.NationalID,
		CreatedBy:   event.CreatorID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
}

func submissionEvent() *events.OnboardingSubmitted {
	return &events.OnboardingSubmitted{
		SubmissionID: uuid.New(),
		CreatorID:    uuid.New(),
		Customer: entity.CustomerPayload{
			Code:       "CU-1",
			NationalID: "900101-1234",
			FirstName:  "Anna",
			LastName:   "Lindberg",
			Email:      "anna@example.com",
		},
		Account:   entity.AccountPayload{Code: "AC-1", Label: "GROWTH 10001"},
		Portfolio: entity.PortfolioPayload{Code: "PF-1", Label: "GROWTH 10001", AccountCode: "AC-1"},
		Subscriptions: []entity.SubscriptionPayload{
			{Code: "PF-1-MGMT", PortfolioCode: "PF-1"},
		},
		CreatedAt: time.Now(),
	}
}

func happyUpstream(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/customers":
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodGet && r.URL.Path == "/portfolios/PF-1/subscriptions":
		w.WriteHeader(http.StatusNotFound)
	default:
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1, "code": "CU-1"})
	}
}

func TestHandleCompletedRunMarksSuccessAndEnqueuesMail(t *testing.T) {
	processor := newProcessor(t, happyUpstream)
	event := submissionEvent()
	insertPendingSubmission(t, event)

	uow, err := processor.Handle(context.Background(), *event, true)
	require.NoError(t, err)
	require.NotNil(t, uow)
	require.NoError(t, uow.Commit())

	ctx := context.Background()
	var status, dataType string
	var data json.RawMessage
	err = testinfra.Pool.QueryRow(ctx,
		"SELECT status, data_type, data FROM onboarding.submissions WHERE id = $1", event.SubmissionID).
		Scan(&status, &dataType, &data)
	require.NoError(t, err)
	require.Equal(t, string(consts.StatusSuccess), status)
	require.Equal(t, string(consts.DataTypeSequentialCreationResult), dataType)

	var result sequence.Result
	require.NoError(t, json.Unmarshal(data, &result))
	require.Equal(t, consts.StepSuccess, result.CustomerCreation.Status)

	var mailEvents int
	err = testinfra.Pool.QueryRow(ctx,
		"SELECT count(*) FROM onboarding.outbox WHERE event = 'SendMail' AND payload->>'email' = $1",
		"anna@example.com").Scan(&mailEvents)
	require.NoError(t, err)
	require.Equal(t, 1, mailEvents)
}

func TestHandleIncompleteRunStaysPendingAndRetries(t *testing.T) {
	processor := newProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	event := submissionEvent()
	insertPendingSubmission(t, event)

	uow, err := processor.Handle(context.Background(), *event, true)
	require.Error(t, err)
	var r errs.RetryableError
	require.True(t, errors.As(err, &r))
	require.NotNil(t, uow)
	require.NoError(t, uow.Commit())

	var status string
	scanErr := testinfra.Pool.QueryRow(context.Background(),
		"SELECT status FROM onboarding.submissions WHERE id = $1", event.SubmissionID).Scan(&status)
	require.NoError(t, scanErr)
	require.Equal(t, string(consts.StatusPending), status)
}

func TestHandleExhaustedRetriesIsFailed(t *testing.T) {
	processor := newProcessor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	event := submissionEvent()
	insertPendingSubmission(t, event)

	uow, err := processor.Handle(context.Background(), *event, false)
	require.NoError(t, err)
	require.NotNil(t, uow)
	require.NoError(t, uow.Commit())

	var status, messages string
	scanErr := testinfra.Pool.QueryRow(context.Background(),
		"SELECT status, messages FROM onboarding.submissions WHERE id = $1", event.SubmissionID).Scan(&status, &messages)
	require.NoError(t, scanErr)
	require.Equal(t, string(consts.StatusFailed), status)
	require.NotEmpty(t, messages)
}
