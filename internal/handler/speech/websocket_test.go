package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyConfigUpdatesState(t *testing.T) {
	state := newConnectionState("session")
	off := false

	applyConfig(state, ConfigMessage{Language: "en-GB", Voice: "en_female_skye_emo_v2_mars_bigtts", TTSEnabled: &off})

	assert.Equal(t, "en-GB", state.language)
	assert.Equal(t, "en_female_skye_emo_v2_mars_bigtts", state.voice)
	assert.False(t, state.ttsEnabled)

	applyConfig(state, ConfigMessage{})
	assert.Equal(t, "en-GB", state.language)
	assert.False(t, state.ttsEnabled)
}

func TestTTSLanguage(t *testing.T) {
	assert.Equal(t, "en", ttsLanguage("en-US"))
	assert.Equal(t, "zh", ttsLanguage("zh_CN"))
	assert.Equal(t, "en", ttsLanguage("en"))
	assert.Equal(t, "", ttsLanguage(""))
}
