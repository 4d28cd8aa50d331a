package consts

// StepStatus is the terminal state of one creation step within a run.
// Once a step leaves NotExecuted it is never re-attempted in that run.
type StepStatus string

const (
	StepNotExecuted StepStatus = "NotExecuted"
	StepSuccess     StepStatus = "Success"
	// StepConflict is part of the wire vocabulary but is never produced by
	// the orchestrator; a natural-key conflict is recorded as StepSkipped
	// with the existing entity attached.
	StepConflict StepStatus = "Conflict"
	StepSkipped  StepStatus = "Skipped"
	StepError    StepStatus = "Error"
	StepFailed   StepStatus = "Failed"
	StepAborted  StepStatus = "Aborted"
)

type SubmissionStatus string

const (
	StatusPending        SubmissionStatus = "Pending"
	StatusSuccess        SubmissionStatus = "Success"
	StatusPartialFailure SubmissionStatus = "PartialFailure"
	StatusFailed         SubmissionStatus = "Failed"
	StatusWarning        SubmissionStatus = "Warning"
	StatusError          SubmissionStatus = "Error"
)

type OutboxStatus int

const (
	NotProcessed OutboxStatus = iota
	Processed
	Processing
	InError
)

type RequestType string

const RequestTypeOnboarding RequestType = "Onboarding"

type DataType string

const DataTypeSequentialCreationResult DataType = "SequentialCreationResult"

const CounterAccountNumber = "account_number"
