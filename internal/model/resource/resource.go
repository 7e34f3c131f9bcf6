// Package resource lists the static help shown next to the chat.
package resource

import (
	"github.com/elliotchance/pie/v2"

	"github.com/hallikerijaved/CareGpt/internal/model/mood"
)

// Contact is an emergency line or service.
type Contact struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
	URL    string `json:"url,omitempty"`
}

// MoodOption is one choice of the mood tracker.
type MoodOption struct {
	Mood    mood.Label `json:"mood"`
	Display string     `json:"display"`
}

// Resources is the payload of the help panel.
type Resources struct {
	Contacts []Contact    `json:"contacts"`
	Moods    []MoodOption `json:"moods"`
}

// EmergencyContacts returns the crisis lines, in display order.
func EmergencyContacts() []Contact {
	return []Contact{
		{Name: "Suicide Prevention Lifeline", Detail: "1-800-273-8255"},
		{Name: "Crisis Text Line", Detail: "Text HELLO to 741741"},
		{Name: "Tele MANAS", Detail: "Government of India mental health helpline", URL: "https://telemanas.mohfw.gov.in/home"},
	}
}

// MoodOptions returns the tracker choices in tracker order.
func MoodOptions() []MoodOption {
	return pie.Map(mood.Labels(), func(l mood.Label) MoodOption {
		return MoodOption{Mood: l, Display: l.Display()}
	})
}

// Default bundles contacts and mood options.
func Default() Resources {
	return Resources{Contacts: EmergencyContacts(), Moods: MoodOptions()}
}
