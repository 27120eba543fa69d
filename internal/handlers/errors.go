package handlers

import (
	"errors"
	"fmt"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/models"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/repositories"
)

// ErrorKind classifies a failed invocation
type ErrorKind int

const (
	// KindUnclassified covers query, scan, serialization and body decoding failures
	KindUnclassified ErrorKind = iota
	// KindConfiguration is a request that cannot be dispatched at all
	KindConfiguration
	// KindConnection is a database that is unreachable or rejects the credentials
	KindConnection
	// KindValidation is a request body missing a required field
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindConnection:
		return "connection"
	case KindValidation:
		return "validation"
	default:
		return "unclassified"
	}
}

// errNoMethod is returned when an invocation carries no HTTP method
var errNoMethod = errors.New("no method passed")

// InvocationError is an error with the kind that decides its response
type InvocationError struct {
	Kind ErrorKind
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// classify wraps err with its kind
func classify(err error) *InvocationError {
	var invErr *InvocationError
	if errors.As(err, &invErr) {
		return invErr
	}

	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return &InvocationError{Kind: KindValidation, Err: validationErr}
	case repositories.IsConnection(err):
		return &InvocationError{Kind: KindConnection, Err: err}
	default:
		return &InvocationError{Kind: KindUnclassified, Err: err}
	}
}
