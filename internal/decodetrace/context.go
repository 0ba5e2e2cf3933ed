// Package decodetrace accumulates diagnostic entries as one decode call
// progresses through the pipeline, for tooling that wants to see why a
// buffer decoded (or failed to decode) the way it did without instrumenting
// the decoder package itself. Adapted from the assembler's debug-information
// context: the same append-only, stage-tagged entry log, re-keyed from
// file/line/column source positions to byte offsets into a decode buffer.
package decodetrace

// Trace is a passive, append-only log of the stages a single Decode call
// passed through. It is not safe for concurrent use by multiple decode
// calls; each call should own its own Trace.
type Trace struct {
	stage   string
	entries []*Entry
}

// New returns an empty Trace with no active stage.
func New() *Trace {
	return &Trace{entries: make([]*Entry, 0)}
}

// SetStage sets the current pipeline stage name. Subsequent entries are
// tagged with this stage until it changes again.
func (t *Trace) SetStage(name string) {
	t.stage = name
}

// Stage returns the current pipeline stage name.
func (t *Trace) Stage() string { return t.stage }

func (t *Trace) record(severity string, offset int, message string) *Entry {
	entry := &Entry{
		severity: severity,
		stage:    t.stage,
		message:  message,
		location: At(offset, t.stage),
	}
	t.entries = append(t.entries, entry)
	return entry
}

// Error records an entry with severity "error".
func (t *Trace) Error(offset int, message string) *Entry {
	return t.record(SeverityError, offset, message)
}

// Warn records an entry with severity "warn".
func (t *Trace) Warn(offset int, message string) *Entry {
	return t.record(SeverityWarn, offset, message)
}

// Info records an entry with severity "info".
func (t *Trace) Info(offset int, message string) *Entry {
	return t.record(SeverityInfo, offset, message)
}

// Step records an entry with severity "trace", for fine-grained per-byte
// pipeline narration.
func (t *Trace) Step(offset int, message string) *Entry {
	return t.record(SeverityTrace, offset, message)
}

// Entries returns all recorded entries in insertion order.
func (t *Trace) Entries() []*Entry {
	result := make([]*Entry, len(t.entries))
	copy(result, t.entries)
	return result
}

// HasErrors reports whether at least one "error" entry was recorded.
func (t *Trace) HasErrors() bool {
	for _, e := range t.entries {
		if e.severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the total number of recorded entries.
func (t *Trace) Count() int { return len(t.entries) }
