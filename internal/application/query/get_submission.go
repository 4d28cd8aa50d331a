package query

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/internal/application/dto"
	"github.com/nordviken/onboarding-backend/internal/application/errs"
	"github.com/nordviken/onboarding-backend/internal/infra/auth"
	"github.com/nordviken/onboarding-backend/internal/infra/db"
	"github.com/nordviken/onboarding-backend/internal/infra/db/repo"
	dbs "github.com/nordviken/onboarding-backend/pkg/db"
)

type GetSubmission struct {
	uowFactory *dbs.UOWFactory
}

func NewGetSubmission(factory *dbs.UOWFactory) *GetSubmission {
	return &GetSubmission{uowFactory: factory}
}

func (q *GetSubmission) Execute(ctx context.Context, id uuid.UUID, identity *auth.Identity) (resp *dto.SubmissionResponse, err error) {
	uow := q.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	submission, err := repo.NewSubmissionRepo(tx).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.CreatedBy != identity.UserID && !identity.Admin {
		return nil, errs.PermissionsError{Err: fmt.Errorf("submission %v belongs to another user", id)}
	}

	mapped := mapSubmission(*submission)
	return &mapped, nil
}

func mapSubmission(s db.Submission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:          s.ID,
		Status:      string(s.Status),
		RequestType: string(s.RequestType),
		RequestBody: s.RequestBody,
		Messages:    s.Messages,
		DataType:    string(s.DataType),
		Data:        s.Data,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
