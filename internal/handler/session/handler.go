package session

import (
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hallikerijaved/CareGpt/internal/model/chat"
	"github.com/hallikerijaved/CareGpt/internal/model/mood"
	speechmodel "github.com/hallikerijaved/CareGpt/internal/model/speech"
	sessionService "github.com/hallikerijaved/CareGpt/internal/service/session"
	"github.com/hallikerijaved/CareGpt/pkg/utils"
)

// Handler exposes the session service over HTTP.
type Handler struct {
	sessions *sessionService.Service
	logger   *slog.Logger
}

// New creates the session handler.
func New(sessions *sessionService.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sessions: sessions, logger: logger.With("component", "session_handler")}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreate)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGet)
		sr.Delete("/", h.handleEnd)

		sr.Post("/messages", h.handleSendMessage)
		sr.Get("/messages", h.handleTranscript)
		sr.Delete("/messages", h.handleClear)
		sr.Get("/export", h.handleExport)

		sr.Post("/moods", h.handleLogMood)
		sr.Get("/moods", h.handleMoodHistory)

		sr.Post("/speak", h.handleSpeak)
	})
}

type sendMessageRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

type logMoodRequest struct {
	Mood string `json:"mood" validate:"required"`
	Note string `json:"note" validate:"max=500"`
}

type speakResponse struct {
	sessionService.SpokenExchange
	AudioData      string `json:"audioData,omitempty"`
	AudioFormat    string `json:"audioFormat,omitempty"`
	SynthesisError string `json:"synthesisError,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, s)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, s)
}

func (h *Handler) handleEnd(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ex, err := h.sessions.SendText(r.Context(), chi.URLParam(r, "sessionID"), req.Message)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, ex)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	turns, err := h.sessions.Transcript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if turns == nil {
		turns = []chat.Turn{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearConversation(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	text, err := h.sessions.ExportConversation(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+chat.ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, text); err != nil {
		h.logger.Warn("failed to write export", "error", err)
	}
}

func (h *Handler) handleLogMood(w http.ResponseWriter, r *http.Request) {
	var req logMoodRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	label, err := mood.Parse(req.Mood)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	entry, err := h.sessions.LogMood(r.Context(), chi.URLParam(r, "sessionID"), label, req.Note)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleMoodHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.sessions.MoodHistory(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []mood.Entry{}
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"moods": entries})
}

func (h *Handler) handleSpeak(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.SpeechEnabled() {
		h.respondServiceError(w, sessionService.ErrSpeechUnavailable)
		return
	}

	upload, err := utils.ReadAudioForm(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.sessions.Speak(r.Context(), chi.URLParam(r, "sessionID"), speechmodel.Audio{
		Data:     upload.Data,
		Format:   upload.Format,
		Language: upload.Language,
	}, sessionService.VoiceOptions{
		Voice: r.FormValue("voice"),
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	resp := speakResponse{SpokenExchange: *out}
	if out.SynthesisError != nil {
		resp.SynthesisError = "speech synthesis failed"
	}
	if out.Audio != nil {
		defer out.Audio.Release()
		data, err := out.Audio.Bytes()
		if err != nil {
			h.logger.Warn("failed to read synthesized audio", "error", err)
			resp.SynthesisError = "speech synthesis failed"
		} else {
			resp.AudioData = base64.StdEncoding.EncodeToString(data)
			resp.AudioFormat = out.Audio.Format
		}
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// StatusFor maps service errors to HTTP statuses and client messages.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, sessionService.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, sessionService.ErrEmptyMessage):
		return http.StatusBadRequest, "message must not be empty"
	case errors.Is(err, mood.ErrUnknownMood):
		return http.StatusBadRequest, "mood must be one of Happy, Sad, Anxious, Angry, Calm, Tired"
	case errors.Is(err, sessionService.ErrSpeechNotUnderstood):
		return http.StatusUnprocessableEntity, sessionService.SpeechNotUnderstood
	case errors.Is(err, sessionService.ErrSpeechUnavailable):
		return http.StatusServiceUnavailable, "speech is not available"
	case errors.Is(err, sessionService.ErrReplyFailed):
		return http.StatusBadGateway, "could not produce a reply"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	status, msg := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	utils.RespondError(w, status, msg)
}
