package predictform

import (
	"errors"
	"strings"
)

var (
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrPredictionFailed = errors.New("prediction failed")
	ErrDemoUnavailable  = errors.New("demo data is only available on a development host")
	ErrUnknownField     = errors.New("unknown field")
	ErrFormNotFound     = errors.New("form not found")
)

// ValidationError is returned by Submit when the validator rejects the record.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}
