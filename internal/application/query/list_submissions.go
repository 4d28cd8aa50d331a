package query

import (
	"context"

	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/dto"
	"github.com/nordviken/onboarding-backend/internal/infra/auth"
	"github.com/nordviken/onboarding-backend/internal/infra/db"
	"github.com/nordviken/onboarding-backend/internal/infra/db/repo"
	dbs "github.com/nordviken/onboarding-backend/pkg/db"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type ListSubmissions struct {
	uowFactory *dbs.UOWFactory
}

func NewListSubmissions(factory *dbs.UOWFactory) *ListSubmissions {
	return &ListSubmissions{uowFactory: factory}
}

// Execute lists submissions visible to the caller. Non-admins only ever see
// their own, whatever filter they pass.
func (q *ListSubmissions) Execute(ctx context.Context, params dto.ListSubmissionsParams, identity *auth.Identity) (resp *dto.ListSubmissionsResponse, err error) {
	filter := db.SubmissionFilter{
		CreatedBy:  params.CreatedBy,
		Status:     consts.SubmissionStatus(params.Status),
		NationalID: params.NationalID,
	}
	if !identity.Admin {
		filter.CreatedBy = &identity.UserID
	}

	page := params.Page
	if page < 1 {
		page = defaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	uow := q.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	submissions, total, err := repo.NewSubmissionRepo(tx).List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SubmissionResponse, 0, len(submissions))
	for _, s := range submissions {
		items = append(items, mapSubmission(s))
	}

	return &dto.ListSubmissionsResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}
