package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/dto"
	"github.com/nordviken/onboarding-backend/internal/application/errs"
	"github.com/nordviken/onboarding-backend/internal/application/payload"
	"github.com/nordviken/onboarding-backend/internal/infra/auth"
	"github.com/nordviken/onboarding-backend/internal/infra/client/registry"
	"github.com/nordviken/onboarding-backend/internal/infra/db"
	"github.com/nordviken/onboarding-backend/internal/infra/db/repo"
	dbs "github.com/nordviken/onboarding-backend/pkg/db"
)

type SubmitOnboarding struct {
	uowFactory *dbs.UOWFactory
	registry   *registry.Client
	validate   *validator.Validate
}

func NewSubmitOnboarding(factory *dbs.UOWFactory, registry *registry.Client) *SubmitOnboarding {
	return &SubmitOnboarding{
		uowFactory: factory,
		registry:   registry,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Execute validates and persists a new submission together with its outbox
// event in one transaction. The creation sequence itself runs later, off the
// outbox.
func (c *SubmitOnboarding) Execute(ctx context.Context, req dto.OnboardingRequest, identity *auth.Identity) (id uuid.UUID, err error) {
	if err := c.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return uuid.Nil, errs.ValidationError{Field: fieldErrs[0].Field(), Msg: fieldErrs[0].Tag()}
		}
		return uuid.Nil, errs.ValidationError{Field: "request", Msg: err.Error()}
	}

	c.enrichFromRegistry(ctx, &req)

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return uuid.Nil, err
	}
	defer uow.Finalize(&err)

	builder := payload.NewBuilder(repo.NewCounterRepo(tx))
	event, err := builder.Build(ctx, req, identity.UserID)
	if err != nil {
		return uuid.Nil, err
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshalling request body, %v", err)
	}

	submission := db.Submission{
		ID:          event.SubmissionID,
		Status:      consts.StatusPending,
		RequestType: consts.RequestTypeOnboarding,
		RequestBody: requestBody,
		NationalID:  event.Customer.NationalID,
		CreatedBy:   identity.UserID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err = repo.NewSubmissionRepo(tx).Insert(ctx, submission); err != nil {
		return uuid.Nil, err
	}
	if err = repo.NewEventRepo(tx).InsertEvent(ctx, *event); err != nil {
		return uuid.Nil, err
	}

	return event.SubmissionID, nil
}

// enrichFromRegistry fills in missing name fields from the national registry.
// Lookup failures are logged and ignored; the submission proceeds with what
// the caller provided.
func (c *SubmitOnboarding) enrichFromRegistry(ctx context.Context, req *dto.OnboardingRequest) {
	if c.registry == nil {
		return
	}
	if req.IsCompany {
		if req.CompanyName != "" {
			return
		}
		company, err := c.registry.LookupCompany(ctx, req.OrgNumber)
		if err != nil {
			slog.Warn("company lookup failed", "err", err)
			return
		}
		req.CompanyName = company.Name
		return
	}
	if req.FirstName != "" && req.LastName != "" {
		return
	}
	person, err := c.registry.LookupPerson(ctx, req.PersonalNumber)
	if err != nil {
		slog.Warn("person lookup failed", "err", err)
		return
	}
	if req.FirstName == "" {
		req.FirstName = person.FirstName
	}
	if req.LastName == "" {
		req.LastName = person.LastName
	}
}
