package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/internal/application/consts"
)

type Submission struct {
	ID          uuid.UUID               `db:"id"`
	Status      consts.SubmissionStatus `db:"status"`
	RequestType consts.RequestType      `db:"request_type"`
	RequestBody json.RawMessage         `db:"request_body"`
	NationalID  string                  `db:"national_id"`
	Messages    string                  `db:"messages"`
	DataType    consts.DataType         `db:"data_type"`
	Data        json.RawMessage         `db:"data"`
	CreatedBy   uuid.UUID               `db:"created_by"`
	CreatedAt   time.Time               `db:"created_at"`
	UpdatedAt   time.Time               `db:"updated_at"`
}

// SubmissionPatch merges into an existing record; nil fields are left as is.
type SubmissionPatch struct {
	Status   *consts.SubmissionStatus
	Messages *string
	DataType *consts.DataType
	Data     json.RawMessage
}

type SubmissionFilter struct {
	CreatedBy  *uuid.UUID
	Status     consts.SubmissionStatus
	NationalID string
}

type Outbox struct {
	ID        uint64          `db:"id"`
	Event     string          `db:"event"`
	Status    int             `db:"status"`
	Retries   int             `db:"retries"`
	Payload   json.RawMessage `db:"payload"`
	CreatedAt time.Time       `db:"created_at"`
}

type Counter struct {
	Type  string `db:"type"`
	Value int64  `db:"value"`
}
