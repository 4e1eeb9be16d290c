package metrics

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName    = errors.New("invalid metric name")
	ErrInvalidLabel   = errors.New("invalid label name")
	ErrInvalidBuckets = errors.New("invalid histogram buckets")

	// ErrKindMismatch is returned when a name is already held by a metric of
	// another type
	ErrKindMismatch = errors.New("metric registered with a different type")
)

// RegistrationError reports why a vector could not be created or shared
type RegistrationError struct {
	Name string
	Type MetricType
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration error for %s %s: %v", e.Type, e.Name, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// IsRegistrationError reports whether err wraps a RegistrationError
func IsRegistrationError(err error) bool {
	var re *RegistrationError
	return errors.As(err, &re)
}
