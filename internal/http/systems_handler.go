package httpapi

import (
	"net/http"

	"github.com/JerraForge/hydroponic-backend/internal/service"

	"go.uber.org/zap"
)

// SystemsHandler /api/v1/systems
type SystemsHandler struct {
	systems service.SystemService
	logger  *zap.Logger
}

func NewSystemsHandler(systems service.SystemService, logger *zap.Logger) *SystemsHandler {
	return &SystemsHandler{systems: systems, logger: logger}
}

// ListSystems GET /api/v1/systems
func (h *SystemsHandler) ListSystems(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromReq(w, r)
	if !ok {
		return
	}

	systems, err := h.systems.ListSystems(r.Context(), identity)
	if err != nil {
		writeServiceError(w, h.logger, "ListSystems", err)
		return
	}

	items := make([]map[string]any, 0, len(systems))
	for _, s := range systems {
		items = append(items, s.ToJSON())
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": len(items),
	}))
}

// CreateSystem POST /api/v1/systems, JSON or form body with name and optional location.
func (h *SystemsHandler) CreateSystem(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromReq(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if isFormRequest(r) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid form body"))
			return
		}
		payload.Name = r.PostForm.Get("name")
		payload.Location = r.PostForm.Get("location")
	} else if err := readBodyJSON(r, maxBodyBytes, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid JSON body"))
		return
	}

	system, err := h.systems.CreateSystem(r.Context(), service.CreateSystemRequest{
		Identity: identity,
		Name:     payload.Name,
		Location: payload.Location,
	})
	if err != nil {
		writeServiceError(w, h.logger, "CreateSystem", err)
		return
	}
	writeJSON(w, http.StatusCreated, Ok(system.ToJSON()))
}

// GetSystem GET /api/v1/systems/{id}
func (h *SystemsHandler) GetSystem(w http.ResponseWriter, r *http.Request, systemID string) {
	identity, ok := identityFromReq(w, r)
	if !ok {
		return
	}

	system, err := h.systems.GetSystem(r.Context(), identity, systemID)
	if err != nil {
		writeServiceError(w, h.logger, "GetSystem", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(system.ToJSON()))
}

// DeleteSystem DELETE /api/v1/systems/{id}
func (h *SystemsHandler) DeleteSystem(w http.ResponseWriter, r *http.Request, systemID string) {
	identity, ok := identityFromReq(w, r)
	if !ok {
		return
	}

	if err := h.systems.DeleteSystem(r.Context(), identity, systemID); err != nil {
		writeServiceError(w, h.logger, "DeleteSystem", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"id": systemID, "deleted": true}))
}
