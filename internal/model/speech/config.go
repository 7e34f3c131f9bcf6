package speech

import "time"

// Default Volcengine endpoints.
const (
	DefaultASREndpoint = "wss://openspeech.bytedance.com/api/v3/sauc/bigmodel_nostream"
	DefaultTTSEndpoint = "wss://openspeech.bytedance.com/api/v3/tts/unidirectional/stream"
)

// PCM layout expected by the recognizer: 16 kHz, 16 bit, mono.
const (
	SampleRate     = 16000
	BytesPerSecond = SampleRate * 2
)

// Config holds the Volcengine credentials and speech defaults.
type Config struct {
	AppID       string `json:"appId"`
	AccessToken string `json:"accessToken"`

	ASREndpoint    string `json:"asrEndpoint"`
	TTSEndpoint    string `json:"ttsEndpoint"`
	ConcurrentMode bool   `json:"concurrentMode"`

	ASRModel    string `json:"asrModel"`
	ASRLanguage string `json:"asrLanguage"`

	TTSVoice    string  `json:"ttsVoice"`
	TTSSpeed    float32 `json:"ttsSpeed"`
	TTSVolume   float32 `json:"ttsVolume"`
	TTSLanguage string  `json:"ttsLanguage"`

	// Timeout bounds one recognition or synthesis call.
	Timeout time.Duration `json:"timeout"`
	// CaptureLimit caps how much audio is sent for recognition.
	CaptureLimit time.Duration `json:"captureLimit"`
	// SpoolBytes is the in-memory size past which clips spill to disk.
	SpoolBytes int `json:"spoolBytes"`
}

// CaptureBytes is the PCM byte budget for CaptureLimit; zero means no limit.
func (c Config) CaptureBytes() int {
	if c.CaptureLimit <= 0 {
		return 0
	}
	return int(c.CaptureLimit.Seconds() * BytesPerSecond)
}
