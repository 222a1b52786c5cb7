package timetracker

import "fmt"

// AuthenticationError is returned when the login form is rejected.
type AuthenticationError struct {
	StatusCode int
	URL        string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("couldn't authenticate user (status %d, landed on %s)", e.StatusCode, e.URL)
}

// SelectionUnavailableError is returned when a requested label is not among
// the options the server offers for a field.
type SelectionUnavailableError struct {
	Field string
	Label string
}

func (e *SelectionUnavailableError) Error() string {
	return fmt.Sprintf("%s %q is not available for the user", e.Field, e.Label)
}

// SubmissionFailedError is returned when the final submission does not
// redirect to the listing page.
type SubmissionFailedError struct {
	StatusCode int
	URL        string
}

func (e *SubmissionFailedError) Error() string {
	return fmt.Sprintf("unable to submit worked hours (status %d, landed on %s)", e.StatusCode, e.URL)
}

// ParseError reports a listing row that could not be decoded.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("listing row %d: invalid %s %q: %v", e.Row, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("listing row %d: invalid %s %q", e.Row, e.Column, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }
