package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/errs"
	"github.com/nordviken/onboarding-backend/internal/application/events"
	"github.com/nordviken/onboarding-backend/internal/application/sequence"
	"github.com/nordviken/onboarding-backend/internal/infra/db"
	"github.com/nordviken/onboarding-backend/internal/infra/db/repo"
	"github.com/nordviken/onboarding-backend/internal/infra/mail"
	dbs "github.com/nordviken/onboarding-backend/pkg/db"
	"github.com/nordviken/onboarding-backend/pkg/env"
	shared "github.com/nordviken/onboarding-backend/pkg/interfaces"
)

type SequenceConfig struct {
	Timeout time.Duration
}

func NewSequenceConfig() SequenceConfig {
	seconds, err := strconv.Atoi(env.GetEnv("SEQUENCE_TIMEOUT", "60"))
	if err != nil {
		slog.Error("invalid SEQUENCE_TIMEOUT, using default", "err", err)
		seconds = 60
	}
	return SequenceConfig{Timeout: time.Duration(seconds) * time.Second}
}

// CreateSequence drives one creation run against the portfolio-management API
// and records the outcome on the submission. Delivery is at least once, so an
// incomplete run is left Pending while the outbox still has redeliveries.
type CreateSequence struct {
	cfg          SequenceConfig
	uowFactory   *dbs.UOWFactory
	orchestrator *sequence.Orchestrator
}

func NewCreateSequence(cfg SequenceConfig, factory *dbs.UOWFactory, orchestrator *sequence.Orchestrator) *CreateSequence {
	return &CreateSequence{
		cfg:          cfg,
		uowFactory:   factory,
		orchestrator: orchestrator,
	}
}

func (c *CreateSequence) Handle(ctx context.Context, event events.OnboardingSubmitted, retriesLeft bool) (shared.UoW, error) {
	result := c.runSequence(ctx, &event)

	var status consts.SubmissionStatus
	var messages string
	var data json.RawMessage
	if result == nil {
		status = consts.StatusError
		messages = "unexpected failure while orchestrating"
	} else {
		status = sequence.DeriveStatus(result, retriesLeft)
		messages = collectMessages(result)
		var err error
		data, err = json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("marshalling sequence result, %v", err)
		}
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}

	if status == consts.StatusSuccess {
		if err := c.enqueueMail(ctx, tx, &event); err != nil {
			slog.Error("could not enqueue completion mail", "submission", event.SubmissionID, "err", err)
			status = consts.StatusWarning
			messages = appendMessage(messages, "completion mail could not be enqueued")
		}
	}

	dataType := consts.DataTypeSequentialCreationResult
	patch := db.SubmissionPatch{
		Status:   &status,
		Messages: &messages,
		DataType: &dataType,
		Data:     data,
	}
	if err = repo.NewSubmissionRepo(tx).Update(ctx, patch, event.SubmissionID); err != nil {
		return uow, err
	}

	if status == consts.StatusPending {
		return uow, errs.RetryableError{Err: fmt.Errorf("creation sequence for %v is incomplete", event.SubmissionID)}
	}
	return uow, nil
}

// runSequence guards the orchestrator with a deadline and a panic recovery;
// a run that dies must never take the delivery boundary down with it.
func (c *CreateSequence) runSequence(ctx context.Context, event *events.OnboardingSubmitted) (result *sequence.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("creation sequence panicked", "submission", event.SubmissionID, "panic", r)
			result = nil
		}
	}()
	timeoutCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	return c.orchestrator.Run(timeoutCtx, event)
}

func (c *CreateSequence) enqueueMail(ctx context.Context, tx pgx.Tx, event *events.OnboardingSubmitted) error {
	mailData := mail.OnboardingCompletedData{
		CustomerName:   customerName(event),
		PortfolioLabel: event.Portfolio.Label,
		Year:           strconv.Itoa(time.Now().Year()),
	}
	return repo.NewEventRepo(tx).InsertEvent(ctx, events.SendMail{
		Email:   string(event.Customer.Email),
		Subject: mailData.GetSubject(),
		Data:    mailData,
	})
}

func customerName(event *events.OnboardingSubmitted) string {
	if event.Customer.Name != "" {
		return event.Customer.Name
	}
	return strings.TrimSpace(event.Customer.FirstName + " " + event.Customer.LastName)
}

func collectMessages(r *sequence.Result) string {
	var parts []string
	add := func(step, msg string) {
		if msg != "" {
			parts = append(parts, step+": "+msg)
		}
	}
	add("customer", r.CustomerCreation.Message)
	if r.PortalUserRegistration != nil {
		add("portal user", r.PortalUserRegistration.Message)
	}
	add("account", r.AccountCreation.Message)
	add("portfolio", r.PortfolioCreation.Message)
	for _, sub := range r.SubscriptionCreations {
		add("subscription "+sub.Payload.Code, sub.Message)
	}
	if r.BankAccountCreation != nil {
		add("bank account", r.BankAccountCreation.Message)
	}
	if r.MandateCreation != nil {
		add("mandate", r.MandateCreation.Message)
	}
	for _, instruction := range r.InstructionCreations {
		add("instruction "+instruction.Payload.Code, instruction.Message)
	}
	return strings.Join(parts, "; ")
}

func appendMessage(messages, msg string) string {
	if messages == "" {
		return msg
	}
	return messages + "; " + msg
}
