package bootstrap_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallikerijaved/CareGpt/internal/bootstrap"
	"github.com/hallikerijaved/CareGpt/internal/config"
	"github.com/hallikerijaved/CareGpt/internal/model/chat"
	"github.com/hallikerijaved/CareGpt/internal/service/responder"
	sessionService "github.com/hallikerijaved/CareGpt/internal/service/session"
)

func testConfig(intentsPath string) *config.Config {
	return &config.Config{
		Assets: config.AssetsConfig{
			IntentsPath: intentsPath,
			OOVToken:    "<OOV>",
		},
		Classifier: config.ClassifierConfig{
			Backend:      config.BackendKeyword,
			Fallback:     config.BackendNone,
			MaxLen:       18,
			Timeout:      5 * time.Second,
			ServingModel: "chatbot",
		},
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewCoreWithShippedCatalog(t *testing.T) {
	core, err := bootstrap.NewCore(context.Background(), testConfig(filepath.Join("..", "..", "assets", "intents.json")), discard())
	require.NoError(t, err)

	assert.Contains(t, core.Intents.Tags(), "suicide")

	res, err := core.Pipeline.Resolve(context.Background(), "I can't sleep")
	require.NoError(t, err)
	assert.Equal(t, "sleep", res.Tag)
	assert.Contains(t, core.Selector.Candidates("sleep"), res.Text)
}

func TestSendTextEndToEnd(t *testing.T) {
	ctx := context.Background()
	core, err := bootstrap.NewCore(ctx, testConfig(filepath.Join("..", "..", "assets", "intents.json")), discard())
	require.NoError(t, err)

	sessions := sessionService.NewService(core.Pipeline, sessionService.Options{Logger: discard()})
	s, err := sessions.Create(ctx)
	require.NoError(t, err)

	ex, err := sessions.SendText(ctx, s.ID, "I feel anxious today")
	require.NoError(t, err)

	turns, err := sessions.Transcript(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, chat.SenderUser, turns[0].Sender)
	assert.Equal(t, "I feel anxious today", turns[0].Text)
	assert.Equal(t, chat.SenderBot, turns[1].Sender)

	allowed := append(core.Selector.Candidates(ex.Resolution.Tag), responder.NotUnderstood, responder.NoResponse)
	assert.Contains(t, allowed, turns[1].Text)
}

func TestNewCoreFailsOnMissingCatalog(t *testing.T) {
	_, err := bootstrap.NewCore(context.Background(), testConfig(filepath.Join(t.TempDir(), "nope.json")), discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load intent catalog")
}

func TestNewCoreFailsOnMissingTokenizer(t *testing.T) {
	cfg := testConfig(filepath.Join("..", "..", "assets", "intents.json"))
	cfg.Assets.TokenizerPath = filepath.Join(t.TempDir(), "tokenizer.json")

	_, err := bootstrap.NewCore(context.Background(), cfg, discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build classifier")
}

func TestNewSpeechDisabled(t *testing.T) {
	assert.Nil(t, bootstrap.NewSpeech(testConfig(""), discard()))
}

func TestNewSpeechEnabled(t *testing.T) {
	cfg := testConfig("")
	cfg.Speech = config.SpeechConfig{
		AppID:        "app",
		AccessToken:  "token",
		ASRLanguage:  "en-US",
		TTSLanguage:  "en",
		CaptureLimit: 5 * time.Second,
		Enabled:      true,
	}

	svc := bootstrap.NewSpeech(cfg, discard())
	require.NotNil(t, svc)
	assert.Equal(t, 5*time.Second, svc.Config().CaptureLimit)
	assert.Equal(t, "app", svc.Config().AppID)
}
