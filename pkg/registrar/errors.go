package registrar

import (
	"errors"
	"fmt"
)

// Sentinel errors common across registrar drivers.
var (
	// ErrUnauthorized indicates the registrar rejected the driver's credentials.
	ErrUnauthorized = errors.New("registrar: unauthorized")

	// ErrNotFound indicates the domain is not known to the registrar.
	ErrNotFound = errors.New("registrar: domain not found")

	// ErrPropagationTimeout indicates VerifyPropagation's poll loop ran out
	// of time before every resolver observed the expected NS set.
	ErrPropagationTimeout = errors.New("registrar: propagation verification timed out")
)

// RegistrarError wraps a driver-specific failure with the operation and
// domain it occurred against, satisfying errors.Is/errors.As against the
// wrapped sentinel.
type RegistrarError struct {
	Driver    string
	Domain    string
	Operation string
	Err       error
}

func (e *RegistrarError) Error() string {
	return fmt.Sprintf("registrar %s: %s %s: %v", e.Driver, e.Operation, e.Domain, e.Err)
}

func (e *RegistrarError) Unwrap() error {
	return e.Err
}

// Wrap builds a RegistrarError, or returns nil if err is nil.
func Wrap(driver, domain, operation string, err error) error {
	if err == nil {
		return nil
	}
	return &RegistrarError{Driver: driver, Domain: domain, Operation: operation, Err: err}
}
