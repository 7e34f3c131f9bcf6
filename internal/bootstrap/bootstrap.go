// Package bootstrap assembles the services shared by the API server and the
// operator CLI.
package bootstrap

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/hallikerijaved/CareGpt/internal/config"
	"github.com/hallikerijaved/CareGpt/internal/model/intent"
	"github.com/hallikerijaved/CareGpt/internal/service/classifier"
	"github.com/hallikerijaved/CareGpt/internal/service/pipeline"
	"github.com/hallikerijaved/CareGpt/internal/service/responder"
	"github.com/hallikerijaved/CareGpt/internal/service/speech"
)

// Core is the text side of the bot.
type Core struct {
	Intents    intent.Store
	Classifier *classifier.Classifier
	Selector   *responder.Selector
	Pipeline   *pipeline.Pipeline
}

// NewCore loads the intent catalog and classifier artifacts. Any missing or
// corrupt asset is an error; the caller must not serve without them.
func NewCore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Core, error) {
	store, err := intent.Load(cfg.Assets.IntentsPath)
	if err != nil {
		return nil, oops.In("bootstrap").With("path", cfg.Assets.IntentsPath).Wrapf(err, "load intent catalog")
	}

	clf, err := classifier.Build(ctx, cfg, store, logger)
	if err != nil {
		return nil, oops.In("bootstrap").
			With("backend", cfg.Classifier.Backend).
			With("tokenizer", cfg.Assets.TokenizerPath).
			With("labels", cfg.Assets.LabelsPath).
			Wrapf(err, "build classifier")
	}

	selector := responder.NewSelector(store, nil)
	logger.Info("classifier ready",
		"backend", cfg.Classifier.Backend,
		"fallback", cfg.Classifier.Fallback,
		"intents", len(store.Tags()),
		"classes", clf.Labels().Len(),
	)

	return &Core{
		Intents:    store,
		Classifier: clf,
		Selector:   selector,
		Pipeline:   pipeline.New(clf, selector),
	}, nil
}

// NewSpeech returns the Volcengine speech service, or nil when speech is
// disabled.
func NewSpeech(cfg *config.Config, logger *slog.Logger) *speech.Service {
	if !cfg.Speech.Enabled {
		logger.Info("speech credentials not configured, voice disabled")
		return nil
	}
	logger.Info("speech enabled", "asr_language", cfg.Speech.ASRLanguage, "tts_voice", cfg.Speech.TTSVoice)
	return speech.NewService(cfg.Speech.ClientConfig(), logger)
}
