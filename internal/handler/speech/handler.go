package speech

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	speechmodel "github.com/hallikerijaved/CareGpt/internal/model/speech"
	sessionService "github.com/hallikerijaved/CareGpt/internal/service/session"
	speechService "github.com/hallikerijaved/CareGpt/internal/service/speech"
	"github.com/hallikerijaved/CareGpt/pkg/utils"
)

// Speech is the voice backend used by the handlers. A nil Speech disables
// every speech endpoint.
type Speech interface {
	speechService.Recognizer
	speechService.Synthesizer
}

// Handler serves the standalone speech endpoints and the voice channel.
type Handler struct {
	speech   Speech
	sessions *sessionService.Service
	logger   *slog.Logger
}

// New creates the speech handler.
func New(speech Speech, sessions *sessionService.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		speech:   speech,
		sessions: sessions,
		logger:   logger.With("component", "speech_handler"),
	}
}

// RegisterRoutes mounts the speech routes under /speech.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(sr chi.Router) {
		sr.Get("/health", h.handleHealth)
		sr.Post("/transcribe", h.handleTranscribe)
		sr.Post("/synthesize", h.handleSynthesize)
		NewWebSocketHandler(h.speech, h.sessions, h.logger).RegisterRoutes(sr)
	})
}

type synthesizeRequest struct {
	Text     string  `json:"text" validate:"required,max=2000"`
	Voice    string  `json:"voice"`
	Speed    float32 `json:"speed" validate:"gte=0,lte=2"`
	Volume   float32 `json:"volume" validate:"gte=0,lte=2"`
	Format   string  `json:"format" validate:"omitempty,oneof=mp3 wav pcm ogg_opus"`
	Language string  `json:"language"`
	Emotion  string  `json:"emotion"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if h.speech == nil {
		utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "disabled",
			"service": "speech",
		})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "speech",
	})
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	upload, err := utils.ReadAudioForm(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	transcript, err := h.speech.Transcribe(r.Context(), speechmodel.Audio{
		SessionID: r.FormValue("sessionId"),
		Data:      upload.Data,
		Format:    upload.Format,
		Language:  upload.Language,
	})
	if err != nil {
		h.respondSpeechError(w, "speech recognition failed", err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, transcript)
}

func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	var req synthesizeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	clip, err := h.speech.Synthesize(r.Context(), speechmodel.Utterance{
		Text:     req.Text,
		Voice:    req.Voice,
		Speed:    req.Speed,
		Volume:   req.Volume,
		Format:   req.Format,
		Language: req.Language,
		Emotion:  req.Emotion,
	})
	if err != nil {
		h.respondSpeechError(w, "speech synthesis failed", err)
		return
	}
	defer clip.Release()

	body, err := clip.Open()
	if err != nil {
		h.logger.Error("failed to open clip", "error", err)
		utils.RespondError(w, http.StatusInternalServerError, "speech synthesis failed")
		return
	}
	defer body.Close()

	format := clip.Format
	if format == "" {
		format = "mpeg"
	}
	w.Header().Set("Content-Type", "audio/"+format)
	w.Header().Set("Content-Length", strconv.Itoa(clip.Len()))
	w.Header().Set("Content-Disposition", "attachment; filename=speech."+clip.Format)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("failed to write audio response", "error", err)
	}
}

func (h *Handler) enabled(w http.ResponseWriter) bool {
	if h.speech == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech is not available")
		return false
	}
	return true
}

func (h *Handler) respondSpeechError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, speechService.ErrEmptyAudio), errors.Is(err, speechService.ErrEmptyText):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case speechService.IsTimeout(err):
		h.logger.Warn(msg, "error", err)
		utils.RespondError(w, http.StatusGatewayTimeout, msg)
	default:
		h.logger.Error(msg, "error", err)
		utils.RespondError(w, http.StatusBadGateway, msg)
	}
}
