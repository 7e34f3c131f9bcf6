package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	speechmodel "github.com/hallikerijaved/CareGpt/internal/model/speech"
	sessionService "github.com/hallikerijaved/CareGpt/internal/service/session"
	speechService "github.com/hallikerijaved/CareGpt/internal/service/speech"
	"github.com/hallikerijaved/CareGpt/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second

	// maxBufferedAudio bounds the audio collected before a final chunk.
	maxBufferedAudio = 10 << 20
)

// WebSocketHandler runs the voice channel of one session: audio or text in,
// recognized text, bot reply and synthesized audio out.
type WebSocketHandler struct {
	speech   Speech
	sessions *sessionService.Service
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the voice channel handler.
func NewWebSocketHandler(speech Speech, sessions *sessionService.Service, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		speech:   speech,
		sessions: sessions,
		logger:   logger.With("component", "voice_channel"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the channel at /ws/{sessionID}.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

// AudioMessage carries one chunk of a recording. Chunks are buffered until
// IsFinal.
type AudioMessage struct {
	AudioData []byte `json:"audioData"`
	Format    string `json:"format"`
	Language  string `json:"language"`
	IsFinal   bool   `json:"isFinal"`
}

// TextMessage is a typed user message.
type TextMessage struct {
	Text string `json:"text"`
}

// ConfigMessage changes per-connection settings. Empty fields are left as is.
type ConfigMessage struct {
	Language   string `json:"language"`
	Voice      string `json:"voice"`
	TTSEnabled *bool  `json:"ttsEnabled,omitempty"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type connectionState struct {
	sessionID   string
	language    string
	voice       string
	ttsEnabled  bool
	audioFormat string
	buffer      bytes.Buffer
}

func newConnectionState(sessionID string) *connectionState {
	return &connectionState{
		sessionID:  sessionID,
		language:   "en-US",
		ttsEnabled: true,
	}
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.speech == nil || h.sessions == nil || !h.sessions.SpeechEnabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech is not available")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.sessions.Get(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := h.logger.With("session_id", sessionID)
	logger.Info("voice channel opened")
	defer logger.Info("voice channel closed")

	ctx, cancel := context.WithCancel(r.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.pingLoop(ctx, conn)
	}()
	defer func() {
		cancel()
		<-done
	}()

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	state := newConnectionState(sessionID)
	h.send(conn, logger, sessionID, map[string]any{
		"type":     "connected",
		"language": state.language,
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("read failed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			h.sendError(conn, logger, "session mismatch")
			continue
		}

		if !h.handleMessage(ctx, conn, logger, state, &msg) {
			return
		}
	}
}

// handleMessage reports false when the channel should close.
func (h *WebSocketHandler) handleMessage(ctx context.Context, conn *websocket.Conn, logger *slog.Logger, state *connectionState, msg *inboundMessage) bool {
	switch msg.Type {
	case "audio":
		return h.handleAudioMessage(ctx, conn, logger, state, msg.Data)
	case "text":
		return h.handleTextMessage(ctx, conn, logger, state, msg.Data)
	case "config":
		h.handleConfigMessage(conn, logger, state, msg.Data)
	default:
		h.sendError(conn, logger, "unsupported message type: "+msg.Type)
	}
	return true
}

func (h *WebSocketHandler) handleAudioMessage(ctx context.Context, conn *websocket.Conn, logger *slog.Logger, state *connectionState, raw json.RawMessage) bool {
	var audio AudioMessage
	if err := json.Unmarshal(raw, &audio); err != nil {
		h.sendError(conn, logger, "invalid audio payload")
		return true
	}

	if state.buffer.Len()+len(audio.AudioData) > maxBufferedAudio {
		state.buffer.Reset()
		h.sendError(conn, logger, "audio too large")
		return true
	}
	state.buffer.Write(audio.AudioData)
	if audio.Format != "" {
		state.audioFormat = audio.Format
	}
	if audio.Language != "" {
		state.language = audio.Language
	}

	if !audio.IsFinal {
		return true
	}
	return h.processBufferedAudio(ctx, conn, logger, state)
}

func (h *WebSocketHandler) processBufferedAudio(ctx context.Context, conn *websocket.Conn, logger *slog.Logger, state *connectionState) bool {
	data := bytes.Clone(state.buffer.Bytes())
	state.buffer.Reset()
	if len(data) == 0 {
		return true
	}

	format := state.audioFormat
	if format == "" {
		format = "wav"
	}
	logger.Debug("recognizing buffered audio", "format", format, "bytes", len(data))

	out, err := h.sessions.Speak(ctx, state.sessionID, speechmodel.Audio{
		Data:     data,
		Format:   format,
		Language: state.language,
	}, sessionService.VoiceOptions{
		Mute:     !state.ttsEnabled,
		Voice:    state.voice,
		Language: ttsLanguage(state.language),
	})
	if err != nil {
		return h.replyError(conn, logger, err)
	}
	if out.Audio != nil {
		defer out.Audio.Release()
	}

	h.send(conn, logger, state.sessionID, map[string]any{
		"type":       "asr",
		"text":       out.Transcript.Text,
		"confidence": out.Transcript.Confidence,
		"truncated":  out.Transcript.Truncated,
	})
	h.sendExchange(conn, logger, state.sessionID, out.Exchange)

	if !state.ttsEnabled {
		return true
	}
	if out.SynthesisError != nil {
		h.send(conn, logger, state.sessionID, map[string]any{"type": "tts", "error": "synthesis failed"})
		return true
	}
	h.sendClip(conn, logger, state.sessionID, out.Audio)
	return true
}

func (h *WebSocketHandler) handleTextMessage(ctx context.Context, conn *websocket.Conn, logger *slog.Logger, state *connectionState, raw json.RawMessage) bool {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		h.sendError(conn, logger, "invalid text payload")
		return true
	}

	ex, err := h.sessions.SendText(ctx, state.sessionID, text.Text)
	if err != nil {
		return h.replyError(conn, logger, err)
	}
	h.sendExchange(conn, logger, state.sessionID, ex)

	if state.ttsEnabled {
		h.sendTTS(ctx, conn, logger, state, ex)
	}
	return true
}

func (h *WebSocketHandler) sendTTS(ctx context.Context, conn *websocket.Conn, logger *slog.Logger, state *connectionState, ex sessionService.Exchange) {
	emotion, scale := speechService.EmotionFor(ex.SuggestedMood)
	clip, err := h.speech.Synthesize(ctx, speechmodel.Utterance{
		SessionID:    state.sessionID,
		Text:         ex.Bot.Text,
		Voice:        state.voice,
		Language:     ttsLanguage(state.language),
		Emotion:      emotion,
		EmotionScale: scale,
	})
	if err != nil {
		logger.Warn("synthesis failed", "error", err)
		h.send(conn, logger, state.sessionID, map[string]any{"type": "tts", "error": "synthesis failed"})
		return
	}
	defer clip.Release()
	h.sendClip(conn, logger, state.sessionID, clip)
}

func (h *WebSocketHandler) sendClip(conn *websocket.Conn, logger *slog.Logger, sessionID string, clip *speechService.Clip) {
	if clip == nil {
		return
	}
	data, err := clip.Bytes()
	if err != nil || len(data) == 0 {
		logger.Warn("synthesized clip unreadable", "error", err)
		return
	}
	h.send(conn, logger, sessionID, map[string]any{
		"type":      "tts",
		"audioData": base64.StdEncoding.EncodeToString(data),
		"format":    clip.Format,
	})
}

func (h *WebSocketHandler) sendExchange(conn *websocket.Conn, logger *slog.Logger, sessionID string, ex sessionService.Exchange) {
	h.send(conn, logger, sessionID, map[string]any{
		"type": "user",
		"text": ex.User.Text,
	})
	h.send(conn, logger, sessionID, map[string]any{
		"type":          "bot",
		"text":          ex.Bot.Text,
		"tag":           ex.Resolution.Tag,
		"suggestedMood": ex.SuggestedMood.Mood,
	})
}

// replyError reports a failed action. A vanished session ends the channel.
func (h *WebSocketHandler) replyError(conn *websocket.Conn, logger *slog.Logger, err error) bool {
	switch {
	case errors.Is(err, sessionService.ErrSessionNotFound):
		h.sendError(conn, logger, "session not found")
		return false
	case errors.Is(err, sessionService.ErrSpeechNotUnderstood):
		h.sendError(conn, logger, sessionService.SpeechNotUnderstood)
	case errors.Is(err, sessionService.ErrEmptyMessage):
		h.sendError(conn, logger, "message must not be empty")
	default:
		logger.Error("voice action failed", "error", err)
		h.sendError(conn, logger, "could not produce a reply")
	}
	return true
}

func (h *WebSocketHandler) handleConfigMessage(conn *websocket.Conn, logger *slog.Logger, state *connectionState, raw json.RawMessage) {
	var cfg ConfigMessage
	if err := json.Unmarshal(raw, &cfg); err != nil {
		h.sendError(conn, logger, "invalid config payload")
		return
	}

	applyConfig(state, cfg)
	logger.Debug("config applied", "language", state.language, "voice", state.voice, "tts", state.ttsEnabled)

	h.send(conn, logger, state.sessionID, map[string]any{
		"type":     "config",
		"language": state.language,
		"voice":    state.voice,
		"tts":      state.ttsEnabled,
	})
}

func applyConfig(state *connectionState, cfg ConfigMessage) {
	if cfg.Language != "" {
		state.language = cfg.Language
	}
	if cfg.Voice != "" {
		state.voice = cfg.Voice
	}
	if cfg.TTSEnabled != nil {
		state.ttsEnabled = *cfg.TTSEnabled
	}
}

// ttsLanguage maps a recognizer locale such as en-US to the synthesizer's
// bare language code.
func ttsLanguage(locale string) string {
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		return locale[:i]
	}
	return locale
}

func (h *WebSocketHandler) send(conn *websocket.Conn, logger *slog.Logger, sessionID string, data map[string]any) {
	h.write(conn, logger, outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, logger *slog.Logger, message string) {
	h.write(conn, logger, outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	})
}

func (h *WebSocketHandler) write(conn *websocket.Conn, logger *slog.Logger, msg outgoingMessage) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		logger.Debug("write failed", "type", msg.Type, "error", err)
	}
}

// pingLoop keeps the connection alive. WriteControl may run alongside the
// read loop's writes.
func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
