package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxLen is the padded sequence length the reference model was
// trained with.
const DefaultMaxLen = 18

// Prediction is the outcome of classifying one query. OK is false when the
// query had no vocabulary words, or the model scored every class zero.
// Scores may be probabilities or logits; negative values still rank.
type Prediction struct {
	Tag        string  `json:"tag,omitempty"`
	OK         bool    `json:"ok"`
	Confidence float64 `json:"confidence,omitempty"`
	Model      string  `json:"model,omitempty"`
}

// Options tune a Classifier.
type Options struct {
	MaxLen   int
	Timeout  time.Duration
	Fallback Model
	Logger   *slog.Logger
}

// Classifier combines the tokenizer, a scoring model and the label encoder.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	tokenizer *Tokenizer
	labels    *LabelEncoder
	model     Model
	fallback  Model
	maxLen    int
	timeout   time.Duration
	logger    *slog.Logger
}

// New assembles a classifier. The model and fallback must score exactly
// labels.Len() classes.
func New(tokenizer *Tokenizer, labels *LabelEncoder, model Model, opts Options) (*Classifier, error) {
	if tokenizer == nil || labels == nil || model == nil {
		return nil, errors.New("tokenizer, label encoder and model are required")
	}
	if labels.Len() == 0 {
		return nil, errors.New("label encoder has no classes")
	}

	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Classifier{
		tokenizer: tokenizer,
		labels:    labels,
		model:     model,
		fallback:  opts.Fallback,
		maxLen:    maxLen,
		timeout:   opts.Timeout,
		logger:    logger.With("component", "classifier"),
	}, nil
}

// Labels exposes the encoder, e.g. for listing known tags.
func (c *Classifier) Labels() *LabelEncoder {
	return c.labels
}

// Classify predicts the intent of already normalized text. A query without
// any vocabulary word returns a Prediction with OK=false and never reaches
// the model. Words mapped to the OOV token do not count as vocabulary.
func (c *Classifier) Classify(ctx context.Context, normalized string) (Prediction, error) {
	seq := c.tokenizer.TextToSequence(normalized)
	if !c.tokenizer.HasVocabulary(seq) {
		return Prediction{}, nil
	}

	in := Input{Text: normalized, Sequence: PadSequence(seq, c.maxLen)}

	scores, used, err := c.predict(ctx, in)
	if err != nil {
		return Prediction{}, err
	}
	if len(scores) != c.labels.Len() {
		return Prediction{}, fmt.Errorf("%w: %s returned %d scores for %d classes", ErrModelOutput, used, len(scores), c.labels.Len())
	}

	if allZero(scores) {
		return Prediction{Model: used}, nil
	}

	idx, confidence := argmax(scores)

	tag, err := c.labels.Decode(idx)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{Tag: tag, OK: true, Confidence: confidence, Model: used}, nil
}

func (c *Classifier) predict(ctx context.Context, in Input) ([]float64, string, error) {
	scores, err := c.invoke(ctx, c.model, in)
	if err == nil {
		return scores, c.model.Name(), nil
	}
	if c.fallback == nil || ctx.Err() != nil {
		return nil, c.model.Name(), fmt.Errorf("%s model: %w", c.model.Name(), err)
	}

	c.logger.Warn("primary model failed, using fallback",
		"model", c.model.Name(), "fallback", c.fallback.Name(), "error", err)

	scores, fbErr := c.invoke(ctx, c.fallback, in)
	if fbErr != nil {
		return nil, c.fallback.Name(), fmt.Errorf("%s model: %w (fallback %s: %v)", c.model.Name(), err, c.fallback.Name(), fbErr)
	}
	return scores, c.fallback.Name(), nil
}

func (c *Classifier) invoke(ctx context.Context, m Model, in Input) ([]float64, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return m.Predict(ctx, in)
}
