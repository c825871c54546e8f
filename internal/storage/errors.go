package storage

import "fmt"

// ParseError reports a task file whose header fences are missing or
// malformed. It is fatal for that one file only; directory scans accumulate
// and report these instead of stopping.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: %s", e.Path, e.Reason)
}

// ValidationError reports a header that parsed but carries an invalid value:
// a missing required key, a status outside the enumeration, or an
// unparseable timestamp.
type ValidationError struct {
	Path   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s: %s", e.Path, e.Field, e.Reason)
}
