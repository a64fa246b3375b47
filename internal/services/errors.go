package services

import "fmt"

// InvalidInputError marks caller mistakes (missing fields, out-of-range
// values) so handlers can answer 400 instead of 500.
type InvalidInputError struct {
	msg string
}

func (e *InvalidInputError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &InvalidInputError{msg: fmt.Sprintf(format, args...)}
}
