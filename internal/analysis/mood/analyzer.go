// Package mood guesses which tracker mood a message expresses, so the UI can
// pre-select it and the voice can answer in a fitting tone.
package mood

import (
	"strings"

	"github.com/hallikerijaved/CareGpt/internal/analysis/text"
	moodmodel "github.com/hallikerijaved/CareGpt/internal/model/mood"
)

// Suggestion is the strongest mood found in a message. A zero Score means
// nothing matched and Mood is empty.
type Suggestion struct {
	Mood  moodmodel.Label `json:"mood,omitempty"`
	Score int             `json:"score"`
}

// Found reports whether any keyword matched.
func (s Suggestion) Found() bool {
	return s.Score > 0 && s.Mood != ""
}

var keywordBuckets = map[moodmodel.Label][]string{
	moodmodel.Happy: {
		"happy", "glad", "great", "good", "amazing", "awesome", "excited", "joy", "wonderful",
		"grateful", "thankful", "proud", "fantastic", "better",
	},
	moodmodel.Sad: {
		"sad", "down", "lonely", "alone", "empty", "cry", "crying", "depressed", "hopeless",
		"unhappy", "heartbroken", "miserable", "worthless", "grief", "hurt",
	},
	moodmodel.Anxious: {
		"anxious", "anxiety", "worried", "worry", "nervous", "panic", "panicking", "scared",
		"afraid", "fear", "stressed", "stress", "overwhelmed", "tense", "restless",
	},
	moodmodel.Angry: {
		"angry", "mad", "furious", "annoyed", "irritated", "frustrated", "rage", "hate",
		"pissed", "resent", "fed up",
	},
	moodmodel.Calm: {
		"calm", "relaxed", "peaceful", "fine", "okay", "content", "rested", "at ease", "chill",
	},
	moodmodel.Tired: {
		"tired", "exhausted", "sleepy", "drained", "burned out", "burnt out", "fatigued",
		"worn out", "insomnia", "can't sleep", "no energy",
	},
}

// Suggest scores every mood bucket against the message and returns the best
// match. Ties resolve in tracker order.
func Suggest(message string) Suggestion {
	normalized := " " + text.Normalize(message) + " "
	if strings.TrimSpace(normalized) == "" {
		return Suggestion{}
	}

	best := Suggestion{}
	for _, label := range moodmodel.Labels() {
		score := 0
		for _, keyword := range keywordBuckets[label] {
			if strings.Contains(normalized, " "+keyword+" ") {
				score += 3
			}
		}
		if score > best.Score {
			best = Suggestion{Mood: label, Score: score}
		}
	}

	if negated(normalized) && best.Mood == moodmodel.Happy {
		// "not good" and friends read as low mood rather than happy.
		best.Mood = moodmodel.Sad
	}
	return best
}

func negated(normalized string) bool {
	for _, cue := range []string{" not ", " don't ", " dont ", " never ", " no longer "} {
		if strings.Contains(normalized, cue) {
			return true
		}
	}
	return false
}
