package chat

import "time"

// Sender identifies who produced a turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Label is the speaker name used in exported transcripts.
func (s Sender) Label() string {
	if s == SenderUser {
		return "You"
	}
	return "Bot"
}

// Turn is one message in a conversation. Turns are never edited after they
// are appended.
type Turn struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
