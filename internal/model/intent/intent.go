package intent

// Intent maps a classifier tag to the canned replies for it. Patterns are
// example utterances; they seed the keyword model and the fitted tokenizer.
type Intent struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Patterns  []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Responses []string `json:"responses" yaml:"responses"`
}

// Seed provides a small built-in catalog used by tests and by keyword-only
// deployments without an intents file.
func Seed() []Intent {
	return []Intent{
		{
			Tag:       "greeting",
			Patterns:  []string{"hi", "hello", "hey there", "good morning", "good evening", "howdy"},
			Responses: []string{"Hello there. Tell me how you are feeling today.", "Hi there. What brings you here today?", "Hi, how are you feeling today?"},
		},
		{
			Tag:       "goodbye",
			Patterns:  []string{"bye", "see you later", "goodbye", "i have to go", "talk to you later"},
			Responses: []string{"See you later. Take care of yourself.", "Goodbye. I'm here whenever you need to talk.", "Bye! Come back if you need anything."},
		},
		{
			Tag:       "thanks",
			Patterns:  []string{"thanks", "thank you", "that's helpful", "thanks for the help"},
			Responses: []string{"Happy to help!", "Any time!", "You're most welcome."},
		},
		{
			Tag:       "sad",
			Patterns:  []string{"i am feeling lonely", "i feel down", "i am sad", "i feel empty", "i don't feel good"},
			Responses: []string{"I'm sorry to hear that. I'm here for you. Talking about it might help, so go ahead and tell me what's on your mind.", "Why do you think you feel this way?", "How long have you been feeling this way?"},
		},
		{
			Tag:       "anxious",
			Patterns:  []string{"i feel anxious", "i'm so anxious", "i am worried", "i feel nervous", "i'm panicking"},
			Responses: []string{"Don't be hard on yourself. What's the reason behind this?", "Can you tell me more about this feeling?", "I understand that it can be scary. Tell me more about it."},
		},
		{
			Tag:       "stressed",
			Patterns:  []string{"i am so stressed out", "i feel stuck", "i still feel stressed", "i am so burned out"},
			Responses: []string{"What do you think is causing this?", "Take a deep breath and gather your thoughts. Go take a walk if possible. Stay hydrated.", "Give yourself a break. Go easy on yourself."},
		},
		{
			Tag:       "sleep",
			Patterns:  []string{"i have insomnia", "i can't sleep", "i haven't slept for the last days", "i can't seem to sleep"},
			Responses: []string{"What do you think is the reason behind this?", "That seems awful. What do you think is behind this?"},
		},
		{
			Tag:       "suicide",
			Patterns:  []string{"i want to kill myself", "i want to die", "i am going to kill myself", "i am going to commit suicide"},
			Responses: []string{"I'm very sorry to hear that, but you have so much to look forward to. Please seek help by contacting the Suicide Prevention Lifeline at 1-800-273-8255."},
		},
		{
			Tag:       "help",
			Patterns:  []string{"could you help me", "give me a hand please", "can you help", "what can you do for me", "i need help"},
			Responses: []string{"Sure. Tell me how I can assist you.", "Tell me your problem so that I can assist you.", "Yes, sure. How can I help you?"},
		},
		{
			Tag:       "about",
			Patterns:  []string{"who are you", "what are you", "tell me about yourself", "what's your name"},
			Responses: []string{"I'm CareGPT, your personal support companion. Tell me about yourself.", "You can call me CareGPT. I'm here to listen."},
		},
	}
}
