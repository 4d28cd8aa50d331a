package commands

import (
	"context"
	"log/slog"

	"github.com/nordviken/onboarding-backend/internal/domain/consts"
	dbs "github.com/nordviken/onboarding-backend/pkg/db"
)

// RecordMandateStatus notes a mandate status change reported by the bank on
// the submission that created the mandate. The mandate code is only known
// from the stored sequence result, so the match goes through the result data.
type RecordMandateStatus struct {
	uowFactory *dbs.UOWFactory
}

func NewRecordMandateStatus(factory *dbs.UOWFactory) *RecordMandateStatus {
	return &RecordMandateStatus{uowFactory: factory}
}

func (c *RecordMandateStatus) Execute(ctx context.Context, mandateCode string, status consts.MandateStatus) (err error) {
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return err
	}
	defer uow.Finalize(&err)

	tag, err := tx.Exec(ctx,
		`UPDATE onboarding.submissions
		SET messages = CASE WHEN messages = '' THEN $2 ELSE messages || '; ' || $2 END, updated_at = now()
		WHERE data->>'mandateCode' = $1`,
		mandateCode, "mandate "+mandateCode+" is "+string(status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		slog.Warn("mandate status update matched no submission", "mandate", mandateCode)
	}
	return nil
}
