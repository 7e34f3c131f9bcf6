// Package pipeline resolves one raw user message to a bot reply.
package pipeline

import (
	"context"
	"strings"

	"github.com/hallikerijaved/CareGpt/internal/analysis/text"
	"github.com/hallikerijaved/CareGpt/internal/service/classifier"
	"github.com/hallikerijaved/CareGpt/internal/service/responder"
)

// Classifier is the part of *classifier.Classifier the pipeline needs.
type Classifier interface {
	Classify(ctx context.Context, normalized string) (classifier.Prediction, error)
}

// Resolution describes how a query was answered.
type Resolution struct {
	Query      string  `json:"query"`
	Normalized string  `json:"normalized"`
	Tag        string  `json:"tag,omitempty"`
	Matched    bool    `json:"matched"`
	Confidence float64 `json:"confidence,omitempty"`
	Text       string  `json:"text"`
}

// Pipeline runs normalize, classify and select in order. It has no state of
// its own.
type Pipeline struct {
	classifier Classifier
	selector   *responder.Selector
}

// New wires a pipeline.
func New(c Classifier, selector *responder.Selector) *Pipeline {
	return &Pipeline{classifier: c, selector: selector}
}

// Resolve answers raw. Input with no letters, or no known word, gets the
// not-understood reply without error; an error means every scoring model
// failed.
func (p *Pipeline) Resolve(ctx context.Context, raw string) (Resolution, error) {
	res := Resolution{Query: raw, Normalized: text.Normalize(raw)}

	if strings.TrimSpace(res.Normalized) == "" {
		res.Text = p.selector.Select("", false)
		return res, nil
	}

	pred, err := p.classifier.Classify(ctx, res.Normalized)
	if err != nil {
		return Resolution{}, err
	}

	res.Tag = pred.Tag
	res.Matched = pred.OK
	res.Confidence = pred.Confidence
	res.Text = p.selector.Select(pred.Tag, pred.OK)
	return res, nil
}
