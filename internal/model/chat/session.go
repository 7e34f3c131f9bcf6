package chat

import "time"

// Session summarizes an anonymous, in-memory support session.
type Session struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	Turns      int       `json:"turns"`
	Moods      int       `json:"moods"`
}
