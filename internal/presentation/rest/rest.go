package rest

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nordviken/onboarding-backend/internal/application"
	"github.com/nordviken/onboarding-backend/internal/application/dto"
	"github.com/nordviken/onboarding-backend/internal/application/errs"
	"github.com/nordviken/onboarding-backend/internal/application/events"
	"github.com/nordviken/onboarding-backend/internal/infra/auth"
	"github.com/nordviken/onboarding-backend/pkg/env"
)

var _ ServerInterface = (*Server)(nil)

type Server struct {
	handlers   *application.Handlers
	processors *application.Processors
	identity   *auth.IdentityProvider
	cfg        Config
}

type Config struct {
	InternalSecret string
	MaxRetries     int
}

func NewConfig() Config {
	maxRetries, err := strconv.Atoi(env.GetEnv("SCHEDULER_MAX_RETRIES", "5"))
	if err != nil {
		maxRetries = 5
	}
	return Config{
		InternalSecret: env.GetEnv("INTERNAL_SECRET", ""),
		MaxRetries:     maxRetries,
	}
}

func NewServer(handlers *application.Handlers, processors *application.Processors, identity *auth.IdentityProvider, cfg Config) *Server {
	return &Server{handlers: handlers, processors: processors, identity: identity, cfg: cfg}
}

func (s *Server) SubmitOnboarding(c *fiber.Ctx) error {
	identity, err := s.identityFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	var req dto.OnboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	submissionID, err := s.handlers.SubmitOnboarding.Execute(c.Context(), req, identity)
	if err != nil {
		var v errs.ValidationError
		if errors.As(err, &v) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	resp := dto.SubmitOnboardingResponse{
		SubmissionID: submissionID.String(),
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

func (s *Server) ListSubmissions(c *fiber.Ctx) error {
	identity, err := s.identityFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	params := dto.ListSubmissionsParams{
		Status:     c.Query("status"),
		NationalID: c.Query("nationalId"),
		Page:       c.QueryInt("page"),
		Limit:      c.QueryInt("limit"),
	}
	if createdBy := c.Query("createdBy"); createdBy != "" {
		id, err := uuid.Parse(createdBy)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid createdBy"})
		}
		params.CreatedBy = &id
	}

	resp, err := s.handlers.ListSubmissions.Execute(c.Context(), params, identity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) GetSubmission(c *fiber.Ctx, id string) error {
	identity, err := s.identityFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	submissionID, err := uuid.Parse(id)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid submission id"})
	}

	resp, err := s.handlers.GetSubmission.Execute(c.Context(), submissionID, identity)
	if err != nil {
		return s.mapError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

func (s *Server) UploadDocument(c *fiber.Ctx, id string) error {
	identity, err := s.identityFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	submissionID, err := uuid.Parse(id)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid submission id"})
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "document file is required"})
	}

	resp, err := s.handlers.UploadDocument.Execute(c.Context(), submissionID, fileHeader, identity)
	if err != nil {
		return s.mapError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleSequence lets an external delivery run one creation sequence
// synchronously. Callers authenticate with the internal shared secret, not a
// user token.
func (s *Server) HandleSequence(c *fiber.Ctx) error {
	token := bearerToken(c)
	if err := auth.VerifyInternalToken(s.cfg.InternalSecret, token); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	var event events.OnboardingSubmitted
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	redeliveryCount, _ := strconv.Atoi(c.Get("X-Redelivery-Count"))
	retriesLeft := redeliveryCount+1 < s.cfg.MaxRetries

	uow, err := s.processors.CreateSequence.Handle(c.Context(), event, retriesLeft)
	if uow != nil {
		// the submission patch must land even when the run is incomplete
		if commitErr := uow.Commit(); commitErr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: commitErr.Error()})
		}
	}
	if err != nil {
		var r errs.RetryableError
		if errors.As(err, &r) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) identityFromRequest(c *fiber.Ctx) (*auth.Identity, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, errors.New("missing bearer token")
	}
	return s.identity.GetIdentity(token)
}

func (s *Server) mapError(c *fiber.Ctx, err error) error {
	var p errs.PermissionsError
	if errors.As(err, &p) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "submission not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
}

func bearerToken(c *fiber.Ctx) string {
	return strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
}
