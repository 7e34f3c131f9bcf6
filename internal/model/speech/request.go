package speech

// Audio is a recorded clip submitted for recognition.
type Audio struct {
	SessionID string `json:"sessionId"`
	Data      []byte `json:"-"`
	Format    string `json:"format"`   // pcm, wav, mp3, ogg
	Language  string `json:"language"` // en-US, zh-CN, ...
}

// Utterance is text to be spoken.
type Utterance struct {
	SessionID string  `json:"sessionId"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice,omitempty"`
	Speed     float32 `json:"speed,omitempty"`
	Volume    float32 `json:"volume,omitempty"`
	Format    string  `json:"format,omitempty"`
	Language  string  `json:"language,omitempty"`

	// Emotion is an optional TTS emotion such as "comfort"; only honoured by
	// emotion-capable voices.
	Emotion      string  `json:"emotion,omitempty"`
	EmotionScale float32 `json:"emotionScale,omitempty"`
}
