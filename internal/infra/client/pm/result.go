package pm

// Status is the classification of one remote call. Every call outcome maps
// into this vocabulary through Classify so no step branches on raw codes.
type Status string

const (
	StatusSuccess  Status = "Success"
	StatusConflict Status = "Conflict"
	StatusNotFound Status = "NotFound"
	StatusFailed   Status = "Failed"
	StatusError    Status = "Error"
	StatusAborted  Status = "Aborted"
)

// Result is the uniform shape every client call returns. Body is only
// populated on Success and, when the backend echoes the existing entity,
// on Conflict.
type Result[T any] struct {
	Status     Status
	StatusCode int
	Body       T
	Err        error
}

// Classify maps an HTTP status code into the result vocabulary.
// 409 means the entity already exists by natural key and is not an error;
// 422 means the backend rejected a validated payload on business grounds.
func Classify(code int) Status {
	switch {
	case code >= 200 && code < 300:
		return StatusSuccess
	case code == 404:
		return StatusNotFound
	case code == 409:
		return StatusConflict
	case code == 422:
		return StatusFailed
	default:
		return StatusError
	}
}
