// Package classifier turns normalized user text into an intent tag:
// tokenize, pad, score with a pre-trained model, and decode the arg-max class.
package classifier

import (
	"context"
	"errors"
)

var (
	// ErrUnknownClass is returned when a model scores an index the label
	// encoder does not know.
	ErrUnknownClass = errors.New("class index out of range")
	// ErrModelOutput is returned when a model answers with an unusable
	// distribution.
	ErrModelOutput = errors.New("unusable model output")
)

// Input is what a scoring model sees for one query. Sequence is already
// padded to the configured length; Text is the normalized query for models
// that work on words rather than indexes.
type Input struct {
	Text     string
	Sequence []int
}

// Model scores one query against every class of the label encoder and
// returns one score per class, in encoder order. Scores may be
// probabilities or raw logits.
type Model interface {
	Name() string
	Predict(ctx context.Context, in Input) ([]float64, error)
}

// argmax returns the index of the largest score; ties go to the lowest
// index, like numpy.argmax.
func argmax(scores []float64) (int, float64) {
	best, bestScore := -1, 0.0
	for i, score := range scores {
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, bestScore
}

// allZero reports a model that matched nothing, e.g. keyword scoring
// with no overlapping pattern.
func allZero(scores []float64) bool {
	for _, score := range scores {
		if score != 0 {
			return false
		}
	}
	return true
}
