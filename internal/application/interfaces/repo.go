package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/internal/infra/db"
	shared "github.com/nordviken/onboarding-backend/pkg/interfaces"
)

type SubmissionRepo interface {
	Insert(ctx context.Context, submission db.Submission) error
	Update(ctx context.Context, patch db.SubmissionPatch, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*db.Submission, error)
	List(ctx context.Context, filter db.SubmissionFilter, page, limit int) ([]db.Submission, int64, error)
}

type EventRepo interface {
	InsertEvent(ctx context.Context, event shared.Event) error
}

// Sequences hands out monotonically increasing numbers per counter type.
// A fetch failure must surface to the caller, never a guessed value.
type Sequences interface {
	Increment(ctx context.Context, counterType string) (int64, error)
}
