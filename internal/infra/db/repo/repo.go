package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nordviken/onboarding-backend/internal/application/consts"
	"github.com/nordviken/onboarding-backend/internal/application/interfaces"
	"github.com/nordviken/onboarding-backend/internal/infra/db"
	shared "github.com/nordviken/onboarding-backend/pkg/interfaces"
)

type SubmissionRepo struct {
	tx pgx.Tx
}

var _ interfaces.SubmissionRepo = (*SubmissionRepo)(nil)

func NewSubmissionRepo(tx pgx.Tx) *SubmissionRepo {
	return &SubmissionRepo{tx: tx}
}

func (s *SubmissionRepo) Insert(ctx context.Context, submission db.Submission) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO onboarding.submissions
			(id, status, request_type, request_body, national_id, messages, data_type, data, created_by, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		submission.ID, submission.Status, submission.RequestType, submission.RequestBody, submission.NationalID,
		submission.Messages, submission.DataType, submission.Data, submission.CreatedBy, submission.CreatedAt, submission.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err inserting submission, %v", err)
	}

	return nil
}

// Update merges the patch into the record by id. A missing record is logged
// and swallowed: the orchestration itself completed, it just couldn't be
// persisted, and failing the delivery for that would redo remote work.
func (s *SubmissionRepo) Update(ctx context.Context, patch db.SubmissionPatch, id uuid.UUID) error {
	tag, err := s.tx.Exec(ctx, `UPDATE onboarding.submissions SET
			status = COALESCE($1, status),
			messages = COALESCE($2, messages),
			data_type = COALESCE($3, data_type),
			data = COALESCE($4, data),
			updated_at = $5
			WHERE id = $6`,
		patch.Status, patch.Messages, patch.DataType, patch.Data, time.Now(), id)
	if err != nil {
		return fmt.Errorf("err updating submission %s, %v", id, err)
	}
	if tag.RowsAffected() == 0 {
		slog.Warn("submission to update does not exist", "id", id)
	}

	return nil
}

func (s *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*db.Submission, error) {
	var submission db.Submission
	query := `SELECT id, status, request_type, request_body, national_id, messages, data_type, data, created_by, created_at, updated_at
			FROM onboarding.submissions WHERE id = $1`
	err := s.tx.QueryRow(ctx, query, id).Scan(&submission.ID, &submission.Status, &submission.RequestType,
		&submission.RequestBody, &submission.NationalID, &submission.Messages, &submission.DataType,
		&submission.Data, &submission.CreatedBy, &submission.CreatedAt, &submission.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &submission, nil
}

func (s *SubmissionRepo) List(ctx context.Context, filter db.SubmissionFilter, page, limit int) ([]db.Submission, int64, error) {
	where := " WHERE 1=1"
	args := make([]any, 0, 5)
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		where += fmt.Sprintf(" AND created_by = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.NationalID != "" {
		args = append(args, filter.NationalID)
		where += fmt.Sprintf(" AND national_id LIKE '%%' || $%d || '%%'", len(args))
	}

	var total int64
	if err := s.tx.QueryRow(ctx, "SELECT count(*) FROM onboarding.submissions"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("err counting submissions, %v", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := `SELECT id, status, request_type, request_body, national_id, messages, data_type, data, created_by, created_at, updated_at
			FROM onboarding.submissions` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("err listing submissions, %v", err)
	}
	defer rows.Close()

	var submissions []db.Submission
	for rows.Next() {
		var submission db.Submission
		if err = rows.Scan(&submission.ID, &submission.Status, &submission.RequestType, &submission.RequestBody,
			&submission.NationalID, &submission.Messages, &submission.DataType, &submission.Data,
			&submission.CreatedBy, &submission.CreatedAt, &submission.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("err scanning submission, %v", err)
		}
		submissions = append(submissions, submission)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

type EventRepo struct {
	tx pgx.Tx
}

var _ interfaces.EventRepo = (*EventRepo)(nil)

func NewEventRepo(tx pgx.Tx) *EventRepo {
	return &EventRepo{tx: tx}
}

func (e *EventRepo) InsertEvent(ctx context.Context, event shared.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("err marshalling event payload, %v", err)
	}
	outbox := db.Outbox{
		Event:     event.GetType(),
		Status:    int(consts.NotProcessed),
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	_, err = e.tx.Exec(ctx, "INSERT INTO onboarding.outbox (event, status, retries, payload, created_at) VALUES ($1,$2,$3,$4,$5)",
		outbox.Event, outbox.Status, outbox.Retries, outbox.Payload, outbox.CreatedAt)
	if err != nil {
		return fmt.Errorf("err inserting a new event, %v", err)
	}

	return nil
}

type CounterRepo struct {
	tx pgx.Tx
}

var _ interfaces.Sequences = (*CounterRepo)(nil)

func NewCounterRepo(tx pgx.Tx) *CounterRepo {
	return &CounterRepo{tx: tx}
}

// Increment returns the next value of a named counter. There is no fallback:
// a missing counter row or a failed update surfaces as an error.
func (c *CounterRepo) Increment(ctx context.Context, counterType string) (int64, error) {
	var value int64
	err := c.tx.QueryRow(ctx, "UPDATE onboarding.counters SET value = value + 1 WHERE type = $1 RETURNING value",
		counterType).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("err incrementing counter %s, %v", counterType, err)
	}

	return value, nil
}
