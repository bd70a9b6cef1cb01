package distributor

import "fmt"

// ParseError reports input that could not be read: malformed numeric text,
// malformed JSON or malformed hex.
type ParseError struct {
	Account string
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Account == "" {
		return fmt.Sprintf("parse error for %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("parse error for account %s: invalid value %q: %v", e.Account, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports well-formed input that breaks a manifest invariant,
// such as a duplicate address or a non-positive amount.
type ValidationError struct {
	Account string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Account == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error for account %s: %s", e.Account, e.Reason)
}
