// Package text holds the string cleanup applied to user input before
// classification and to transcripts before export.
package text

import (
	"regexp"
	"strings"
)

var nonLetters = regexp.MustCompile(`[^a-zA-Z']`)

// Normalize replaces everything except ASCII letters and apostrophes with a
// space, lowercases the result and collapses whitespace.
func Normalize(raw string) string {
	cleaned := nonLetters.ReplaceAllString(raw, " ")
	return strings.Join(strings.Fields(strings.ToLower(cleaned)), " ")
}

var emojiRuns = regexp.MustCompile("[" +
	"\U0001F600-\U0001F64F" + // emoticons
	"\U0001F300-\U0001F5FF" + // symbols & pictographs
	"\U0001F680-\U0001F6FF" + // transport & map
	"\U0001F1E0-\U0001F1FF" + // flags
	"\u2702-\u27B0" + // dingbats
	"\u24C2-\U0001F251" + // enclosed characters
	"]+")

// StripEmoji removes chat emoji and leaves all other text untouched.
func StripEmoji(s string) string {
	return emojiRuns.ReplaceAllString(s, "")
}
