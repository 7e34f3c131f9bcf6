package mood

import (
	"testing"

	moodmodel "github.com/hallikerijaved/CareGpt/internal/model/mood"
)

func TestSuggestAnxious(t *testing.T) {
	s := Suggest("I feel anxious today, really worried about work")
	if s.Mood != moodmodel.Anxious {
		t.Fatalf("expected anxious, got %q", s.Mood)
	}
	if s.Score < 6 {
		t.Fatalf("expected two keyword hits, got score %d", s.Score)
	}
}

func TestSuggestTiredPhrase(t *testing.T) {
	s := Suggest("I'm completely burned out and can't sleep")
	if s.Mood != moodmodel.Tired {
		t.Fatalf("expected tired, got %q", s.Mood)
	}
}

func TestSuggestNegatedHappy(t *testing.T) {
	s := Suggest("I'm not good at all")
	if s.Mood != moodmodel.Sad {
		t.Fatalf("expected negated happiness to read as sad, got %q", s.Mood)
	}
}

func TestSuggestNothing(t *testing.T) {
	for _, in := range []string{"", "   ", "the weather report", "123 !!!"} {
		if s := Suggest(in); s.Found() {
			t.Fatalf("expected no suggestion for %q, got %+v", in, s)
		}
	}
}

func TestSuggestWholeWordsOnly(t *testing.T) {
	// "madrid" must not count as "mad".
	if s := Suggest("flying to madrid"); s.Found() {
		t.Fatalf("unexpected suggestion %+v", s)
	}
}
