package errs

import "fmt"

type PermissionsError struct {
	Err error
}

func (t PermissionsError) Error() string {
	return fmt.Sprintf("error in permissions: %v", t.Err)
}

// RetryableError marks a handler failure the outbox poller should redeliver.
type RetryableError struct {
	Err error
}

func (t RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %v", t.Err)
}

type ValidationError struct {
	Field string
	Msg   string
}

func (t ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", t.Field, t.Msg)
}
