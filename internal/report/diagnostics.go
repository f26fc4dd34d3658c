package report

import (
	"fmt"
	"sync"
)

// Diagnostics collects non-fatal notes emitted while a report is assembled:
// sources missing from the schema, queries that timed out, metrics degraded
// to zero. Aggregations run concurrently, so the collector is locked.
type Diagnostics struct {
	mu    sync.Mutex
	notes []string
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Notef records one diagnostic note.
func (d *Diagnostics) Notef(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes = append(d.notes, fmt.Sprintf(format, args...))
}

// Notes returns a copy of the collected notes.
func (d *Diagnostics) Notes() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.notes))
	copy(out, d.notes)
	return out
}
