package mood

import (
	"errors"
	"strings"

	"github.com/elliotchance/pie/v2"
)

// Label is one of the fixed moods offered by the tracker.
type Label string

const (
	Happy   Label = "Happy"
	Sad     Label = "Sad"
	Anxious Label = "Anxious"
	Angry   Label = "Angry"
	Calm    Label = "Calm"
	Tired   Label = "Tired"
)

// ErrUnknownMood is returned when a mood is not one of the tracker options.
var ErrUnknownMood = errors.New("unknown mood")

var icons = map[Label]string{
	Happy:   "😊",
	Sad:     "😢",
	Anxious: "😰",
	Angry:   "😡",
	Calm:    "😌",
	Tired:   "🥱",
}

// Labels lists the moods in tracker order.
func Labels() []Label {
	return []Label{Happy, Sad, Anxious, Angry, Calm, Tired}
}

// Display returns the label with its emoji, e.g. "😊 Happy".
func (l Label) Display() string {
	return icons[l] + " " + string(l)
}

// Valid reports whether l is a tracker option.
func (l Label) Valid() bool {
	return pie.Contains(Labels(), l)
}

// Parse accepts either the bare label or its display form, ignoring case.
func Parse(raw string) (Label, error) {
	trimmed := strings.TrimSpace(raw)
	for _, label := range Labels() {
		if strings.EqualFold(trimmed, string(label)) || strings.EqualFold(trimmed, label.Display()) {
			return label, nil
		}
	}
	return "", ErrUnknownMood
}
