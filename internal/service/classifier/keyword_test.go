package classifier_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallikerijaved/CareGpt/internal/model/intent"
	"github.com/hallikerijaved/CareGpt/internal/service/classifier"
)

func seedKeywordModel() (*classifier.LabelEncoder, *classifier.KeywordModel) {
	store := intent.MustMemoryStore(intent.Seed())
	labels := classifier.NewLabelEncoder(store.Tags())
	return labels, classifier.NewKeywordModel(labels, store.List())
}

func TestKeywordModelPicksClosestPattern(t *testing.T) {
	labels, model := seedKeywordModel()

	scores, err := model.Predict(context.Background(), classifier.Input{Text: "i feel anxious"})
	require.NoError(t, err)
	require.Len(t, scores, labels.Len())

	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}
	tag, err := labels.Decode(best)
	require.NoError(t, err)
	assert.Equal(t, "anxious", tag)

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestKeywordModelNoOverlap(t *testing.T) {
	labels, model := seedKeywordModel()

	scores, err := model.Predict(context.Background(), classifier.Input{Text: "zebra xylophone"})
	require.NoError(t, err)
	assert.Equal(t, make([]float64, labels.Len()), scores)

	scores, err = model.Predict(context.Background(), classifier.Input{Text: ""})
	require.NoError(t, err)
	assert.Equal(t, make([]float64, labels.Len()), scores)
}
