package decodetrace

import "fmt"

// Location identifies a position within the instruction byte buffer a decode
// call is running over. It is a value type — safe to copy and compare.
type Location struct {
	offset int // byte offset from the start of the buffer
	stage  string
}

// At creates a Location for the given buffer offset and pipeline stage name.
func At(offset int, stage string) Location {
	return Location{offset: offset, stage: stage}
}

// Offset returns the byte offset the location refers to.
func (l Location) Offset() int { return l.offset }

// Stage returns the pipeline stage name active when the location was
// recorded.
func (l Location) Stage() string { return l.stage }

// String returns a human-readable representation of the location.
func (l Location) String() string {
	return fmt.Sprintf("%s@%d", l.stage, l.offset)
}
