package quote

import (
	"errors"
	"fmt"
)

// Sentinel errors for the record error taxonomy.
//
// The concrete error types below unwrap to these, so callers can use
// errors.Is without caring about the details:
//
//	if errors.Is(err, quote.ErrFormat) {
//	    // payload was valid JSON but not an array
//	}
var (
	// ErrValidation is returned when user input is missing a required field.
	ErrValidation = errors.New("validation error")

	// ErrFormat is returned when an import payload is not an array of quotes.
	ErrFormat = errors.New("format error")

	// ErrDecode is returned when a payload is not well-formed JSON.
	ErrDecode = errors.New("decode error")
)

// ValidationError reports an empty required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// FormatError reports a payload with the wrong shape.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid quotes payload: %s", e.Reason)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// DecodeError reports malformed JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse quotes: %v", e.Err)
}

// Unwrap returns both the sentinel and the underlying decoder error.
func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }
