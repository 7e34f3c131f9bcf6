package resource

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hallikerijaved/CareGpt/internal/model/intent"
	"github.com/hallikerijaved/CareGpt/internal/model/resource"
	"github.com/hallikerijaved/CareGpt/pkg/utils"
)

// Handler serves read-only reference data.
type Handler struct {
	intents   intent.Store
	resources resource.Resources
}

// New creates the handler.
func New(intents intent.Store) *Handler {
	return &Handler{intents: intents, resources: resource.Default()}
}

// RegisterRoutes mounts the handler.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/intents", h.handleListIntents)
	r.Get("/resources", h.handleResources)
}

func (h *Handler) handleListIntents(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{"tags": h.intents.Tags()})
}

func (h *Handler) handleResources(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.resources)
}
