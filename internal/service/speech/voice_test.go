package speech

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	moodanalysis "github.com/hallikerijaved/CareGpt/internal/analysis/mood"
	"github.com/hallikerijaved/CareGpt/internal/model/mood"
)

func TestResourceCandidates(t *testing.T) {
	tests := []struct {
		name  string
		voice string
		want  []string
	}{
		{name: "default voice", voice: "", want: []string{"volc.service_type.10029", "seed-tts-2.0"}},
		{name: "clone voice", voice: "S_clone_speaker", want: []string{"volc.megatts.default"}},
		{name: "bigtts voice", voice: "en_female_skye_emo_v2_mars_bigtts", want: []string{"seed-tts-2.0", "volc.service_type.10029"}},
		{name: "legacy voice", voice: "en_male_adam", want: []string{"volc.service_type.10029", "seed-tts-2.0"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resourceCandidates(tt.voice), tt.name)
	}
}

func TestSpeakerCandidates(t *testing.T) {
	assert.Equal(t, []string{"custom", "en_female_skye_emo_v2_mars_bigtts"},
		speakerCandidates("custom", "en_female_skye_emo_v2_mars_bigtts"))
	assert.Equal(t, []string{"en_female_skye_emo_v2_mars_bigtts"},
		speakerCandidates("", "en_female_skye_emo_v2_mars_bigtts"))
	assert.Equal(t, []string{"EN_voice"}, speakerCandidates("EN_voice", "en_voice"))
	assert.Equal(t, []string{"en_female_skye_emo_v2_mars_bigtts", "x"}, speakerCandidates("calm", "x"))
	assert.Equal(t, []string{"en_female_amy_jupiter_bigtts"}, speakerCandidates("", ""))
}

func TestIsResourceMismatch(t *testing.T) {
	assert.False(t, isResourceMismatch(nil))
	assert.False(t, isResourceMismatch(errors.New("some other error")))
	assert.True(t, isResourceMismatch(errors.New(`TTS error: {"error":"resource ID is mismatched with speaker related resource"}`)))
}

func TestEmotionFor(t *testing.T) {
	emotion, scale := EmotionFor(moodanalysis.Suggestion{Mood: mood.Sad, Score: 3})
	assert.Equal(t, "comfort", emotion)
	assert.Equal(t, float32(3), scale)

	emotion, scale = EmotionFor(moodanalysis.Suggestion{Mood: mood.Anxious, Score: 30})
	assert.Equal(t, "comfort", emotion)
	assert.Equal(t, float32(5), scale)

	emotion, _ = EmotionFor(moodanalysis.Suggestion{Mood: mood.Calm, Score: 3})
	assert.Empty(t, emotion)

	emotion, _ = EmotionFor(moodanalysis.Suggestion{})
	assert.Empty(t, emotion)
}

func TestSupportsEmotion(t *testing.T) {
	assert.True(t, SupportsEmotion("en_male_glen_emo_v2_mars_bigtts"))
	assert.False(t, SupportsEmotion("en_female_amy_jupiter_bigtts"))
	assert.False(t, SupportsEmotion(""))
}
