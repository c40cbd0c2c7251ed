package export

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/scopemap/scopemap/backend-go/internal/auth"
	"github.com/scopemap/scopemap/backend-go/internal/project"
)

type Handler struct {
	projects *project.Service
	renderer *Renderer
}

func NewHandler(projects *project.Service, renderer *Renderer) *Handler {
	return &Handler{projects: projects, renderer: renderer}
}

// ExportPNG renders the project's latest snapshot as a PNG image.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	projectID := mux.Vars(r)["projectId"]

	doc, err := h.projects.LatestDocument(r.Context(), projectID, userID)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		case errors.Is(err, project.ErrNotMember):
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "not a project member"})
		default:
			slog.Error("load document for export", "project", projectID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	data, err := h.renderer.RenderPNG(doc)
	if err != nil {
		if errors.Is(err, ErrEmptyDiagram) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "nothing to export"})
			return
		}
		slog.Error("render png", "project", projectID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="diagram.png"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
