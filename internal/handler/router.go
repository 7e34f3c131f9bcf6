package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	resourceHandler "github.com/hallikerijaved/CareGpt/internal/handler/resource"
	sessionHandler "github.com/hallikerijaved/CareGpt/internal/handler/session"
	speechHandler "github.com/hallikerijaved/CareGpt/internal/handler/speech"
	middlewarePkg "github.com/hallikerijaved/CareGpt/internal/middleware"
	"github.com/hallikerijaved/CareGpt/internal/model/intent"
	sessionService "github.com/hallikerijaved/CareGpt/internal/service/session"
	"github.com/hallikerijaved/CareGpt/pkg/utils"
)

// Deps are the services the HTTP layer is built on. Speech may be nil when
// voice is not configured.
type Deps struct {
	Sessions *sessionService.Service
	Speech   speechHandler.Speech
	Intents  intent.Store
	Logger   *slog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": deps.Sessions.Len(),
			"speech":   deps.Speech != nil,
		})
	})

	r.Route("/api", func(api chi.Router) {
		resourceHandler.New(deps.Intents).RegisterRoutes(api)
		sessionHandler.New(deps.Sessions, logger).RegisterRoutes(api)
		speechHandler.New(deps.Speech, deps.Sessions, logger).RegisterRoutes(api)
	})

	return r
}
