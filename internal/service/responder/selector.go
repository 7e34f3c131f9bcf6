// Package responder picks the canned reply for a classified intent.
package responder

import (
	"math/rand/v2"
	"sync"

	"github.com/elliotchance/pie/v2"

	"github.com/hallikerijaved/CareGpt/internal/model/intent"
)

const (
	// NotUnderstood is the reply when no intent could be predicted.
	NotUnderstood = "I'm sorry, I couldn't understand that."
	// NoResponse is the reply when the predicted tag has no catalog replies.
	NoResponse = "I'm not sure how to respond."
)

// Source supplies the random choice between candidate replies.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// lockedSource serializes a non thread-safe source such as *rand.Rand.
type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.IntN(n)
}

// Selector maps tags to replies. It is safe for concurrent use.
type Selector struct {
	store intent.Store
	src   Source
}

// NewSelector returns a selector over the catalog. A nil source uses the
// process-wide generator.
func NewSelector(store intent.Store, src Source) *Selector {
	if src == nil {
		return &Selector{store: store, src: globalSource{}}
	}
	return &Selector{store: store, src: &lockedSource{src: src}}
}

// Candidates returns every reply of every entry tagged tag.
func (s *Selector) Candidates(tag string) []string {
	var replies []string
	for _, item := range s.store.FindByTag(tag) {
		replies = append(replies, item.Responses...)
	}
	return pie.Filter(replies, func(reply string) bool {
		return reply != ""
	})
}

// Select returns a reply for a prediction. ok reports whether the
// classifier produced a tag at all.
func (s *Selector) Select(tag string, ok bool) string {
	if !ok {
		return NotUnderstood
	}
	candidates := s.Candidates(tag)
	if len(candidates) == 0 {
		return NoResponse
	}
	return candidates[s.src.IntN(len(candidates))]
}
