package errs

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")

	// scheduling
	ErrMalformedInput  = errors.New("malformed xml document")
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrSeriesDetection = errors.New("invalid serie, can not detect code")
	ErrStorage         = errors.New("storage error")
	ErrChannel         = errors.New("channel error")

	// delivery
	ErrDeliveryRejected    = errors.New("delivery rejected")
	ErrDeliveryUnavailable = errors.New("delivery endpoint unavailable")
)

// UnsupportedTypeError carries the document type that has no delivery rules.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s is not supported yet", e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// RejectedError is a fault answered by the tax authority. Resending the same file won't help.
type RejectedError struct {
	Code    string
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected: %s - %s", e.Code, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrDeliveryRejected
}

// Retryable reports whether the caller may retry the same input later.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrMalformedInput),
		errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrSeriesDetection),
		errors.Is(err, ErrDeliveryRejected):
		return false
	case errors.Is(err, ErrStorage),
		errors.Is(err, ErrChannel),
		errors.Is(err, ErrDeliveryUnavailable):
		return true
	default:
		return false
	}
}
