// Package speech adapts the Volcengine openspeech websocket APIs to the
// Recognizer and Synthesizer used by the session layer.
package speech

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hallikerijaved/CareGpt/internal/model/speech"
)

// ErrEmptyAudio is returned when there is nothing to recognize.
var ErrEmptyAudio = errors.New("no audio data to send")

// ErrEmptyText is returned when there is nothing to synthesize.
var ErrEmptyText = errors.New("text to synthesize is empty")

// Recognizer turns recorded audio into text.
type Recognizer interface {
	Transcribe(ctx context.Context, audio speech.Audio) (*speech.Transcript, error)
}

// Synthesizer turns text into a playable clip. Callers must Release the clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, utt speech.Utterance) (*Clip, error)
}

// Service bundles both Volcengine clients behind one configuration.
type Service struct {
	config *speech.Config
	asr    *ASRClient
	tts    *TTSClient
}

// NewService creates the speech service.
func NewService(config *speech.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "speech")
	return &Service{
		config: config,
		asr:    NewASRClient(config, logger),
		tts:    NewTTSClient(config, logger),
	}
}

// Config exposes the effective configuration.
func (s *Service) Config() speech.Config {
	return *s.config
}

// Transcribe implements Recognizer.
func (s *Service) Transcribe(ctx context.Context, audio speech.Audio) (*speech.Transcript, error) {
	return s.asr.Transcribe(ctx, audio)
}

// Synthesize implements Synthesizer.
func (s *Service) Synthesize(ctx context.Context, utt speech.Utterance) (*Clip, error) {
	return s.tts.Synthesize(ctx, utt)
}
