package mood

import (
	"slices"
	"time"
)

// TimestampLayout is the minute-resolution format recorded on entries.
const TimestampLayout = "2006-01-02 15:04"

// Entry is one logged mood.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Mood      Label  `json:"mood"`
	Display   string `json:"display"`
	Note      string `json:"note,omitempty"`
}

// Log keeps mood entries in the order they were logged. Entries cannot be
// removed; the log lives as long as its session.
type Log struct {
	entries []Entry
}

// NewLog returns an empty mood log.
func NewLog() *Log {
	return &Log{}
}

// Append records a mood at the given wall-clock time.
func (l *Log) Append(label Label, note string, at time.Time) Entry {
	entry := Entry{
		Timestamp: at.Format(TimestampLayout),
		Mood:      label,
		Display:   label.Display(),
		Note:      note,
	}
	l.entries = append(l.entries, entry)
	return entry
}

// Entries returns the log in chronological order.
func (l *Log) Entries() []Entry {
	return slices.Clone(l.entries)
}

// History returns the log most recent first, for display.
func (l *Log) History() []Entry {
	history := slices.Clone(l.entries)
	slices.Reverse(history)
	return history
}

// Len reports the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}
