package classifier

import (
	"context"
	"strings"

	"github.com/hallikerijaved/CareGpt/internal/analysis/text"
	"github.com/hallikerijaved/CareGpt/internal/model/intent"
)

// KeywordModel scores queries by word overlap with the catalog's example
// patterns. It needs no artifacts and serves as the offline fallback.
type KeywordModel struct {
	classes  []string
	patterns map[string][]map[string]struct{}
}

// NewKeywordModel indexes the patterns of every intent whose tag the label
// encoder knows.
func NewKeywordModel(labels *LabelEncoder, intents []intent.Intent) *KeywordModel {
	m := &KeywordModel{
		classes:  labels.Classes(),
		patterns: make(map[string][]map[string]struct{}),
	}
	for _, item := range intents {
		for _, pattern := range item.Patterns {
			words := wordSet(pattern)
			if len(words) == 0 {
				continue
			}
			m.patterns[item.Tag] = append(m.patterns[item.Tag], words)
		}
	}
	return m
}

// Name implements Model.
func (m *KeywordModel) Name() string {
	return "keyword"
}

// Predict returns, per class, the best Jaccard overlap between the query and
// one of the class patterns, normalized to sum to one. A query sharing no
// word with any pattern yields all zeros.
func (m *KeywordModel) Predict(_ context.Context, in Input) ([]float64, error) {
	query := wordSet(in.Text)
	scores := make([]float64, len(m.classes))
	if len(query) == 0 {
		return scores, nil
	}

	total := 0.0
	for i, class := range m.classes {
		for _, pattern := range m.patterns[class] {
			if s := jaccard(query, pattern); s > scores[i] {
				scores[i] = s
			}
		}
		total += scores[i]
	}

	if total > 0 {
		for i := range scores {
			scores[i] /= total
		}
	}
	return scores, nil
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(text.Normalize(s)) {
		set[word] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	shared := 0
	for word := range a {
		if _, ok := b[word]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}
