package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"

	speechmodel "github.com/hallikerijaved/CareGpt/internal/model/speech"
)

// Config aggregates every setting of the service.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Assets     AssetsConfig
	Classifier ClassifierConfig
	AI         AIConfig
	Speech     SpeechConfig
	Session    SessionConfig
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	classifierCfg, err := loadClassifierConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: server,
		Log: LogConfig{
			Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
			File:  strings.TrimSpace(os.Getenv("LOG_FILE")),
		},
		Assets: AssetsConfig{
			IntentsPath:   getEnvOrDefault("INTENTS_PATH", "assets/intents.json"),
			TokenizerPath: strings.TrimSpace(os.Getenv("TOKENIZER_PATH")),
			LabelsPath:    strings.TrimSpace(os.Getenv("LABELS_PATH")),
			OOVToken:      getEnvOrDefault("TOKENIZER_OOV_TOKEN", "<OOV>"),
		},
		Classifier: classifierCfg,
		AI:         ai,
		Speech:     speech,
		Session:    session,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return oops.In("config").Wrapf(err, "invalid configuration")
	}

	for _, backend := range []string{c.Classifier.Backend, c.Classifier.Fallback} {
		switch backend {
		case BackendServing:
			if c.Classifier.ServingURL == "" {
				return oops.In("config").Errorf("SERVING_URL is required for the %s backend", BackendServing)
			}
		case BackendLLM:
			if !c.AI.Enabled() {
				return oops.In("config").Errorf("Ark credentials and Model are required for the %s backend", BackendLLM)
			}
		}
	}
	return nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `validate:"required"`
}

// loadServerConfig resolves the listen address from PORT.
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LogConfig describes log output.
type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	File  string
}

// AssetsConfig points at the static artifacts loaded once at startup.
type AssetsConfig struct {
	IntentsPath string `validate:"required"`
	// Keras tokenizer JSON; empty fits a tokenizer on the catalog patterns.
	TokenizerPath string
	// Label encoder classes JSON; empty uses the sorted catalog tags.
	LabelsPath string
	OOVToken   string
}

// Classifier backends.
const (
	BackendServing = "serving"
	BackendLLM     = "llm"
	BackendKeyword = "keyword"
	BackendNone    = "none"
)

// ClassifierConfig selects and tunes the scoring model.
type ClassifierConfig struct {
	Backend      string        `validate:"oneof=serving llm keyword"`
	Fallback     string        `validate:"oneof=serving llm keyword none"`
	MaxLen       int           `validate:"gte=1,lte=512"`
	Timeout      time.Duration `validate:"gt=0"`
	ServingURL   string        `validate:"omitempty,url"`
	ServingModel string        `validate:"required"`
}

func loadClassifierConfig() (ClassifierConfig, error) {
	maxLen := 18
	if override, err := parseOptionalIntEnv("CLASSIFIER_MAXLEN"); err != nil {
		return ClassifierConfig{}, err
	} else if override != nil {
		maxLen = *override
	}

	timeoutSeconds := 5
	if override, err := parseOptionalIntEnv("CLASSIFIER_TIMEOUT"); err != nil {
		return ClassifierConfig{}, err
	} else if override != nil {
		timeoutSeconds = *override
	}

	return ClassifierConfig{
		Backend:      strings.ToLower(getEnvOrDefault("CLASSIFIER_BACKEND", BackendKeyword)),
		Fallback:     strings.ToLower(getEnvOrDefault("CLASSIFIER_FALLBACK", BackendKeyword)),
		MaxLen:       maxLen,
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
		ServingURL:   strings.TrimSpace(os.Getenv("SERVING_URL")),
		ServingModel: getEnvOrDefault("SERVING_MODEL", "chatbot"),
	}, nil
}

// AIConfig describes the Ark chat model used by the llm backend.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string `validate:"omitempty,url"`
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY and Model, or ARK_ACCESS_KEY and ARK_SECRET_KEY")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}
	if temperature == nil {
		zero := 0.0
		temperature = &zero
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// SpeechConfig describes the Volcengine speech services.
type SpeechConfig struct {
	AppID        string
	AccessToken  string
	ASREndpoint  string `validate:"omitempty,url"`
	TTSEndpoint  string `validate:"omitempty,url"`
	ASRModel     string
	ASRLanguage  string `validate:"required"`
	TTSVoice     string
	TTSSpeed     float32 `validate:"gte=0,lte=3"`
	TTSVolume    float32 `validate:"gte=0,lte=3"`
	TTSLanguage  string  `validate:"required"`
	Timeout      time.Duration
	CaptureLimit time.Duration `validate:"gt=0"`
	SpoolBytes   int           `validate:"gte=0"`
	Enabled      bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeoutSeconds := 30
	if timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT"); err != nil {
		return SpeechConfig{}, err
	} else if timeout != nil {
		timeoutSeconds = *timeout
	}

	captureSeconds := 5
	if capture, err := parseOptionalIntEnv("SPEECH_CAPTURE_LIMIT"); err != nil {
		return SpeechConfig{}, err
	} else if capture != nil {
		captureSeconds = *capture
	}

	spoolBytes := 1 << 20
	if spool, err := parseOptionalIntEnv("SPEECH_SPOOL_BYTES"); err != nil {
		return SpeechConfig{}, err
	} else if spool != nil {
		spoolBytes = *spool
	}

	ttsSpeed := float32(1.0)
	if speed, err := parseOptionalFloat32Env("SPEECH_TTS_SPEED"); err != nil {
		return SpeechConfig{}, err
	} else if speed != nil {
		ttsSpeed = *speed
	}

	ttsVolume := float32(1.0)
	if volume, err := parseOptionalFloat32Env("SPEECH_TTS_VOLUME"); err != nil {
		return SpeechConfig{}, err
	} else if volume != nil {
		ttsVolume = *volume
	}

	appID := strings.TrimSpace(os.Getenv("SPEECH_APP_ID"))
	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))
	if accessToken == "" {
		accessToken = strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	}

	enabled, err := parseBoolEnv("SPEECH_ENABLED", appID != "" && accessToken != "")
	if err != nil {
		return SpeechConfig{}, err
	}

	return SpeechConfig{
		AppID:        appID,
		AccessToken:  accessToken,
		ASREndpoint:  getEnvOrDefault("SPEECH_ASR_ENDPOINT", speechmodel.DefaultASREndpoint),
		TTSEndpoint:  getEnvOrDefault("SPEECH_TTS_ENDPOINT", speechmodel.DefaultTTSEndpoint),
		ASRModel:     getEnvOrDefault("SPEECH_ASR_MODEL", "bigmodel"),
		ASRLanguage:  getEnvOrDefault("SPEECH_ASR_LANGUAGE", "en-US"),
		TTSVoice:     getEnvOrDefault("SPEECH_TTS_VOICE", "en_female_skye_emo_v2_mars_bigtts"),
		TTSSpeed:     ttsSpeed,
		TTSVolume:    ttsVolume,
		TTSLanguage:  getEnvOrDefault("SPEECH_TTS_LANGUAGE", "en"),
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
		CaptureLimit: time.Duration(captureSeconds) * time.Second,
		SpoolBytes:   spoolBytes,
		Enabled:      enabled && appID != "" && accessToken != "",
	}, nil
}

// ClientConfig converts the settings into the speech client configuration.
func (c SpeechConfig) ClientConfig() *speechmodel.Config {
	return &speechmodel.Config{
		AppID:        c.AppID,
		AccessToken:  c.AccessToken,
		ASREndpoint:  c.ASREndpoint,
		TTSEndpoint:  c.TTSEndpoint,
		ASRModel:     c.ASRModel,
		ASRLanguage:  c.ASRLanguage,
		TTSVoice:     c.TTSVoice,
		TTSSpeed:     c.TTSSpeed,
		TTSVolume:    c.TTSVolume,
		TTSLanguage:  c.TTSLanguage,
		Timeout:      c.Timeout,
		CaptureLimit: c.CaptureLimit,
		SpoolBytes:   c.SpoolBytes,
	}
}

// SessionConfig controls in-memory session lifetime.
type SessionConfig struct {
	IdleTimeout time.Duration `validate:"gt=0"`
}

func loadSessionConfig() (SessionConfig, error) {
	idleMinutes := 120
	if override, err := parseOptionalIntEnv("SESSION_IDLE_TIMEOUT"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		idleMinutes = *override
	}
	return SessionConfig{IdleTimeout: time.Duration(idleMinutes) * time.Minute}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
