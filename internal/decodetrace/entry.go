package decodetrace

import "fmt"

// Severity constants for entry classification.
const (
	SeverityError = "error"
	SeverityWarn  = "warn"
	SeverityInfo  = "info"
	SeverityTrace = "trace"
)

// Entry is a single diagnostic event recorded during one decode call. Its
// core fields are immutable once created; only the optional detail field can
// be attached via WithDetail before the entry is considered complete.
type Entry struct {
	severity string
	stage    string
	message  string
	location Location
	detail   string
}

func (e *Entry) Severity() string   { return e.severity }
func (e *Entry) Stage() string      { return e.stage }
func (e *Entry) Message() string    { return e.message }
func (e *Entry) Location() Location { return e.location }
func (e *Entry) Detail() string     { return e.detail }

// WithDetail attaches extra context (e.g. the raw byte value examined) and
// returns the same *Entry for chaining.
func (e *Entry) WithDetail(text string) *Entry {
	e.detail = text
	return e
}

// String returns a single-line representation for quick debugging.
func (e *Entry) String() string {
	if e.detail == "" {
		return fmt.Sprintf("%s [%s] %s", e.severity, e.location.String(), e.message)
	}
	return fmt.Sprintf("%s [%s] %s (%s)", e.severity, e.location.String(), e.message, e.detail)
}
