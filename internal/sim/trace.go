package sim

import (
	"encoding/csv"
	"os"
	"strconv"

	"vtsched/internal/proc"
)

// Trace logs every decision and stop of a run as CSV. A nil Trace is
// valid and records nothing.
type Trace struct {
	file *os.File
	w    *csv.Writer
}

// NewTrace opens path for CSV tracing and writes the header row.
func NewTrace(path string) (*Trace, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	w.Write([]string{"clock", "event", "pid", "amount", "detail"})
	w.Flush()
	return &Trace{file: f, w: w}, nil
}

// Record appends one row and flushes, so a crashed run still leaves a
// usable trace.
func (t *Trace) Record(clock int64, event string, pid proc.Pid, amount int64, detail string) {
	if t == nil {
		return
	}
	t.w.Write([]string{
		strconv.FormatInt(clock, 10),
		event,
		strconv.FormatInt(int64(pid), 10),
		strconv.FormatInt(amount, 10),
		detail,
	})
	t.w.Flush()
}

// Close flushes and closes the underlying file.
func (t *Trace) Close() error {
	if t == nil {
		return nil
	}
	t.w.Flush()
	return t.file.Close()
}
