// Package session keeps the in-memory state of anonymous support sessions:
// the conversation, the mood log and the voice round trip.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	moodanalysis "github.com/hallikerijaved/CareGpt/internal/analysis/mood"
	"github.com/hallikerijaved/CareGpt/internal/model/chat"
	"github.com/hallikerijaved/CareGpt/internal/model/mood"
	speechmodel "github.com/hallikerijaved/CareGpt/internal/model/speech"
	"github.com/hallikerijaved/CareGpt/internal/service/pipeline"
	"github.com/hallikerijaved/CareGpt/internal/service/speech"
)

// SpeechNotUnderstood is shown when a recording yields no usable text.
const SpeechNotUnderstood = "Sorry, I couldn't understand the audio."

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrReplyFailed         = errors.New("could not produce a reply")
	ErrSpeechUnavailable   = errors.New("speech is not configured")
	ErrSpeechNotUnderstood = errors.New(SpeechNotUnderstood)
)

// Resolver answers one user message.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (pipeline.Resolution, error)
}

// Options tune the service. Zero values pick sensible defaults; nil speech
// adapters disable voice.
type Options struct {
	IdleTimeout time.Duration
	Clock       func() time.Time
	Recognizer  speech.Recognizer
	Synthesizer speech.Synthesizer
	Logger      *slog.Logger
}

// Exchange is the result of one user message.
type Exchange struct {
	User          chat.Turn               `json:"user"`
	Bot           chat.Turn               `json:"bot"`
	Resolution    pipeline.Resolution     `json:"resolution"`
	SuggestedMood moodanalysis.Suggestion `json:"suggestedMood"`
}

// SpokenExchange is an Exchange that started from audio. Audio is nil when
// synthesis is disabled or failed; the caller must Release it.
type SpokenExchange struct {
	Exchange
	Transcript     *speechmodel.Transcript `json:"transcript"`
	Audio          *speech.Clip            `json:"-"`
	SynthesisError error                   `json:"-"`
}

type state struct {
	mu         sync.Mutex
	id         string
	createdAt  time.Time
	lastActive time.Time
	transcript *chat.Transcript
	moods      *mood.Log
	ended      bool
}

func (st *state) summary() chat.Session {
	return chat.Session{
		ID:         st.id,
		CreatedAt:  st.createdAt,
		LastActive: st.lastActive,
		Turns:      st.transcript.Len(),
		Moods:      st.moods.Len(),
	}
}

// Service owns every live session. Actions on one session run one at a
// time; different sessions proceed in parallel.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*state

	resolver    Resolver
	recognizer  speech.Recognizer
	synthesizer speech.Synthesizer
	idleTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewService creates an empty session service.
func NewService(resolver Resolver, opts Options) *Service {
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = 2 * time.Hour
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions:    make(map[string]*state),
		resolver:    resolver,
		recognizer:  opts.Recognizer,
		synthesizer: opts.Synthesizer,
		idleTimeout: idle,
		now:         now,
		logger:      logger.With("component", "session"),
	}
}

// SpeechEnabled reports whether voice input is available.
func (s *Service) SpeechEnabled() bool {
	return s.recognizer != nil
}

// Create starts a new session with an empty conversation and mood log.
func (s *Service) Create(_ context.Context) (chat.Session, error) {
	now := s.now().UTC()
	st := &state{
		id:         uuid.NewString(),
		createdAt:  now,
		lastActive: now,
		transcript: chat.NewTranscriptWithClock(s.now),
		moods:      mood.NewLog(),
	}

	s.mu.Lock()
	s.sessions[st.id] = st
	s.mu.Unlock()

	s.logger.Debug("session created", "session_id", st.id)
	return st.summary(), nil
}

// Get returns the session summary.
func (s *Service) Get(_ context.Context, id string) (chat.Session, error) {
	var summary chat.Session
	err := s.read(id, func(st *state) error {
		summary = st.summary()
		return nil
	})
	return summary, err
}

// End discards a session and all of its data.
func (s *Service) End(_ context.Context, id string) error {
	s.mu.Lock()
	st, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	st.mu.Lock()
	st.ended = true
	st.mu.Unlock()

	s.logger.Debug("session ended", "session_id", id)
	return nil
}

// SendText answers a typed message, trimmed of surrounding whitespace.
// Blank messages are rejected before anything is recorded.
func (s *Service) SendText(ctx context.Context, id, message string) (Exchange, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Exchange{}, ErrEmptyMessage
	}

	var ex Exchange
	err := s.act(id, func(st *state) error {
		var err error
		ex, err = s.exchange(ctx, st, message)
		return err
	})
	return ex, err
}

// VoiceOptions shape the spoken reply of Speak. The zero value voices the
// reply with the synthesizer defaults.
type VoiceOptions struct {
	Mute     bool
	Voice    string
	Language string
}

// Speak recognizes a recording and answers it like a typed message, then
// voices the reply unless opts.Mute is set. A failed synthesis is reported
// on the result, not as an error, because the text reply was already
// recorded.
func (s *Service) Speak(ctx context.Context, id string, audio speechmodel.Audio, opts VoiceOptions) (*SpokenExchange, error) {
	if s.recognizer == nil {
		return nil, ErrSpeechUnavailable
	}

	var out *SpokenExchange
	err := s.act(id, func(st *state) error {
		audio.SessionID = st.id
		transcript, err := s.recognizer.Transcribe(ctx, audio)
		if err != nil {
			s.logger.Warn("speech recognition failed", "session_id", st.id, "error", err)
			return fmt.Errorf("%w: %v", ErrSpeechNotUnderstood, err)
		}
		if transcript == nil || strings.TrimSpace(transcript.Text) == "" {
			return ErrSpeechNotUnderstood
		}

		ex, err := s.exchange(ctx, st, strings.TrimSpace(transcript.Text))
		if err != nil {
			return err
		}
		out = &SpokenExchange{Exchange: ex, Transcript: transcript}

		if s.synthesizer == nil || opts.Mute {
			return nil
		}
		emotion, scale := speech.EmotionFor(ex.SuggestedMood)
		clip, err := s.synthesizer.Synthesize(ctx, speechmodel.Utterance{
			SessionID:    st.id,
			Text:         ex.Bot.Text,
			Voice:        opts.Voice,
			Language:     opts.Language,
			Emotion:      emotion,
			EmotionScale: scale,
		})
		if err != nil {
			s.logger.Warn("speech synthesis failed", "session_id", st.id, "error", err)
			out.SynthesisError = err
			return nil
		}
		out.Audio = clip
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// exchange resolves message and records both turns. Nothing is recorded when
// resolution fails.
func (s *Service) exchange(ctx context.Context, st *state, message string) (Exchange, error) {
	res, err := s.resolver.Resolve(ctx, message)
	if err != nil {
		s.logger.Error("resolve failed", "session_id", st.id, "error", err)
		return Exchange{}, fmt.Errorf("%w: %v", ErrReplyFailed, err)
	}

	user := st.transcript.Append(chat.SenderUser, message)
	bot := st.transcript.Append(chat.SenderBot, res.Text)
	return Exchange{
		User:          user,
		Bot:           bot,
		Resolution:    res,
		SuggestedMood: moodanalysis.Suggest(message),
	}, nil
}

// LogMood records a tracker entry stamped with the current time.
func (s *Service) LogMood(_ context.Context, id string, label mood.Label, note string) (mood.Entry, error) {
	if !label.Valid() {
		return mood.Entry{}, mood.ErrUnknownMood
	}

	var entry mood.Entry
	err := s.act(id, func(st *state) error {
		entry = st.moods.Append(label, strings.TrimSpace(note), s.now())
		return nil
	})
	return entry, err
}

// ClearConversation empties the conversation; the mood log is kept.
func (s *Service) ClearConversation(_ context.Context, id string) error {
	return s.act(id, func(st *state) error {
		st.transcript.Clear()
		return nil
	})
}

// ExportConversation renders the conversation as plain text.
func (s *Service) ExportConversation(_ context.Context, id string) (string, error) {
	var out string
	err := s.read(id, func(st *state) error {
		out = st.transcript.ExportText()
		return nil
	})
	return out, err
}

// Transcript returns the conversation turns in order.
func (s *Service) Transcript(_ context.Context, id string) ([]chat.Turn, error) {
	var turns []chat.Turn
	err := s.read(id, func(st *state) error {
		turns = st.transcript.Turns()
		return nil
	})
	return turns, err
}

// MoodHistory returns logged moods, most recent first.
func (s *Service) MoodHistory(_ context.Context, id string) ([]mood.Entry, error) {
	var entries []mood.Entry
	err := s.read(id, func(st *state) error {
		entries = st.moods.History()
		return nil
	})
	return entries, err
}

// SweepIdle ends every session idle for longer than the idle timeout and
// returns how many were removed.
func (s *Service) SweepIdle() int {
	cutoff := s.now().UTC().Add(-s.idleTimeout)

	s.mu.Lock()
	var expired []*state
	for id, st := range s.sessions {
		// A locked session is in the middle of an action.
		if !st.mu.TryLock() {
			continue
		}
		idle := st.lastActive.Before(cutoff)
		if idle {
			st.ended = true
			delete(s.sessions, id)
			expired = append(expired, st)
		}
		st.mu.Unlock()
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		s.logger.Info("expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepIdle()
		}
	}
}

// Len reports the number of live sessions.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// act runs fn with the session locked and marks it active.
func (s *Service) act(id string, fn func(*state) error) error {
	return s.with(id, true, fn)
}

// read runs fn with the session locked without touching its activity.
func (s *Service) read(id string, fn func(*state) error) error {
	return s.with(id, false, fn)
}

func (s *Service) with(id string, touch bool, fn func(*state) error) error {
	s.mu.RLock()
	st, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.ended {
		return ErrSessionNotFound
	}
	if touch {
		st.lastActive = s.now().UTC()
	}
	return fn(st)
}
