package speech

import (
	"strings"

	moodanalysis "github.com/hallikerijaved/CareGpt/internal/analysis/mood"
	"github.com/hallikerijaved/CareGpt/internal/model/mood"
)

// TTS emotions used for each tracker mood of the listener. Distress is
// answered in a comforting tone, good news in a happy one.
var moodEmotions = map[mood.Label]string{
	mood.Happy:   "happy",
	mood.Sad:     "comfort",
	mood.Anxious: "comfort",
	mood.Angry:   "comfort",
	mood.Tired:   "tender",
}

// EmotionFor picks the reply emotion and its 1-5 intensity for a mood
// suggested by the user's message. Calm and unknown moods get no emotion.
func EmotionFor(s moodanalysis.Suggestion) (string, float32) {
	if !s.Found() {
		return "", 0
	}
	emotion, ok := moodEmotions[s.Mood]
	if !ok {
		return "", 0
	}
	scale := float32(2 + s.Score/3)
	return emotion, min(scale, 5)
}

// SupportsEmotion reports whether a voice accepts the emotion parameters.
func SupportsEmotion(voice string) bool {
	normalized := strings.ToLower(strings.TrimSpace(voice))
	return normalized != "" && strings.Contains(normalized, "_emo")
}
