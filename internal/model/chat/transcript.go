package chat

import (
	"strings"
	"time"

	"github.com/elliotchance/pie/v2"

	"github.com/hallikerijaved/CareGpt/internal/analysis/text"
)

// ExportFilename is the name offered for downloaded transcripts.
const ExportFilename = "chat_history.txt"

// Transcript is the append-only conversation log of a session. It is not
// safe for concurrent use; the session layer serializes access.
type Transcript struct {
	turns []Turn
	now   func() time.Time
}

// NewTranscript returns an empty log.
func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

// NewTranscriptWithClock returns an empty log that stamps turns with now.
func NewTranscriptWithClock(now func() time.Time) *Transcript {
	return &Transcript{now: now}
}

// Append adds a turn at the end of the log and returns it.
func (t *Transcript) Append(sender Sender, message string) Turn {
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	turn := Turn{Sender: sender, Text: message, CreatedAt: now().UTC()}
	t.turns = append(t.turns, turn)
	return turn
}

// Turns returns a copy of the log in chronological order.
func (t *Transcript) Turns() []Turn {
	return append([]Turn(nil), t.turns...)
}

// Len reports the number of turns.
func (t *Transcript) Len() int {
	return len(t.turns)
}

// Clear drops every turn.
func (t *Transcript) Clear() {
	t.turns = nil
}

// ExportText renders the log as "You: ..." / "Bot: ..." lines with emoji
// removed.
func (t *Transcript) ExportText() string {
	lines := pie.Map(t.turns, func(turn Turn) string {
		return turn.Sender.Label() + ": " + text.StripEmoji(turn.Text)
	})
	return strings.Join(lines, "\n")
}
