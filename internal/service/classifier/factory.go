package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hallikerijaved/CareGpt/internal/config"
	"github.com/hallikerijaved/CareGpt/internal/model/intent"
)

// Build loads the tokenizer and label encoder artifacts and wires the
// configured backend and fallback. Missing artifact paths fall back to a
// tokenizer fitted on the catalog patterns and the sorted catalog tags.
func Build(ctx context.Context, cfg *config.Config, store intent.Store, logger *slog.Logger) (*Classifier, error) {
	var (
		tokenizer *Tokenizer
		labels    *LabelEncoder
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		if cfg.Assets.TokenizerPath == "" {
			var patterns []string
			for _, item := range store.List() {
				patterns = append(patterns, item.Patterns...)
			}
			tokenizer = FitOnTexts(patterns, cfg.Assets.OOVToken)
			return nil
		}
		loaded, err := LoadTokenizer(cfg.Assets.TokenizerPath)
		tokenizer = loaded
		return err
	})
	g.Go(func() error {
		if cfg.Assets.LabelsPath == "" {
			labels = NewLabelEncoder(store.Tags())
			return nil
		}
		loaded, err := LoadLabelEncoder(cfg.Assets.LabelsPath)
		labels = loaded
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	primary, err := newModel(ctx, cfg, cfg.Classifier.Backend, labels, store)
	if err != nil {
		return nil, err
	}

	var fallback Model
	if fb := cfg.Classifier.Fallback; fb != config.BackendNone && fb != cfg.Classifier.Backend {
		fallback, err = newModel(ctx, cfg, fb, labels, store)
		if err != nil {
			return nil, err
		}
	}

	return New(tokenizer, labels, primary, Options{
		MaxLen:   cfg.Classifier.MaxLen,
		Timeout:  cfg.Classifier.Timeout,
		Fallback: fallback,
		Logger:   logger,
	})
}

func newModel(ctx context.Context, cfg *config.Config, backend string, labels *LabelEncoder, store intent.Store) (Model, error) {
	switch backend {
	case config.BackendServing:
		return NewServingModel(cfg.Classifier.ServingURL, cfg.Classifier.ServingModel, cfg.Classifier.Timeout), nil
	case config.BackendLLM:
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewLLMModel(ctx, chatModel, labels)
	case config.BackendKeyword:
		return NewKeywordModel(labels, store.List()), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", backend)
	}
}
