// Package httpapi exposes the promptkit store over JSON HTTP. Handlers are
// stateless; every request reads or writes through types.Store.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// Handler serves the /api routes.
type Handler struct {
	store  types.Store
	logger *slog.Logger
}

// NewHandler creates a Handler over an attached store.
func NewHandler(store types.Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("handler", "api"),
	}
}

// Routes registers every route on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /api/state", h.GetState)
	mux.HandleFunc("GET /api/export", h.Export)
	mux.HandleFunc("POST /api/import", h.Import)

	mux.HandleFunc("POST /api/projects", h.CreateProject)
	mux.HandleFunc("PUT /api/projects", h.UpdateProject)
	mux.HandleFunc("DELETE /api/projects", h.DeleteProject)

	mux.HandleFunc("POST /api/prompts", h.CreatePrompt)
	mux.HandleFunc("PUT /api/prompts", h.UpdatePrompt)
	mux.HandleFunc("DELETE /api/prompts", h.DeletePrompt)

	mux.HandleFunc("GET /api/templates", h.ListTemplates)
	mux.HandleFunc("POST /api/templates", h.CreateTemplate)
	mux.HandleFunc("PUT /api/templates", h.UpdateTemplate)
	mux.HandleFunc("DELETE /api/templates", h.DeleteTemplate)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetState returns every project (with prompts) and every template.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.GetState(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch state")
		return
	}
	RespondJSON(w, http.StatusOK, state)
}

// Export returns a snapshot of user content.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	export, err := h.store.ExportAllData(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to export data")
		return
	}
	RespondJSON(w, http.StatusOK, export)
}

type importResponse struct {
	Success bool `json:"success"`
	types.ImportResult
}

// Import adds the payload's content under new identities.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req types.ImportData
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.store.ImportData(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "Failed to import data")
		return
	}

	h.logger.Info("data imported",
		"projects", result.Projects,
		"prompts", result.Prompts,
		"templates", result.Templates,
	)
	RespondJSON(w, http.StatusOK, importResponse{Success: true, ImportResult: *result})
}

// CreateProject creates an empty project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req types.CreateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	project, err := h.store.CreateProject(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err, "Failed to create project")
		return
	}

	h.logger.Info("project created", "id", project.ID)
	RespondJSON(w, http.StatusOK, project)
}

// UpdateProject renames a project.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.store.UpdateProject(r.Context(), req.ID, req.Name); err != nil {
		h.fail(w, r, err, "Failed to update project")
		return
	}
	respondSuccess(w)
}

// DeleteProject deletes a project and its prompts.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	var req types.DeleteProjectRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.store.DeleteProject(r.Context(), req.ID); err != nil {
		h.fail(w, r, err, "Failed to delete project")
		return
	}

	h.logger.Info("project deleted", "id", req.ID)
	respondSuccess(w)
}

// CreatePrompt creates an empty prompt in a project.
func (h *Handler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req types.CreatePromptRequest
	if !h.decode(w, r, &req) {
		return
	}

	prompt, err := h.store.CreatePrompt(r.Context(), req.ProjectID, req.Name)
	if err != nil {
		h.fail(w, r, err, "Failed to create prompt")
		return
	}

	h.logger.Info("prompt created", "id", prompt.ID, "project_id", prompt.ProjectID)
	RespondJSON(w, http.StatusOK, prompt)
}

// UpdatePrompt writes one prompt field.
func (h *Handler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req types.UpdatePromptRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.store.UpdatePrompt(r.Context(), req.ID, req.ProjectID, req.Field, req.Value); err != nil {
		h.fail(w, r, err, "Failed to update prompt")
		return
	}
	respondSuccess(w)
}

// DeletePrompt deletes a prompt.
func (h *Handler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	var req types.DeletePromptRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.store.DeletePrompt(r.Context(), req.ID, req.ProjectID); err != nil {
		h.fail(w, r, err, "Failed to delete prompt")
		return
	}

	h.logger.Info("prompt deleted", "id", req.ID, "project_id", req.ProjectID)
	respondSuccess(w)
}

// ListTemplates returns every template.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.GetAllTemplates(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to fetch templates")
		return
	}
	RespondJSON(w, http.StatusOK, templates)
}

// CreateTemplate creates a user template.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req types.CreateTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}

	tmpl, err := h.store.CreateTemplate(r.Context(), req.Name, req.Content, req.Type)
	if err != nil {
		h.fail(w, r, err, "Failed to create template")
		return
	}

	h.logger.Info("template created", "id", tmpl.ID, "type", tmpl.Type)
	RespondJSON(w, http.StatusOK, tmpl)
}

// UpdateTemplate replaces a template's name and content.
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.store.UpdateTemplate(r.Context(), req.ID, req.Name, req.Content); err != nil {
		h.fail(w, r, err, "Failed to update template")
		return
	}
	respondSuccess(w)
}

// DeleteTemplate deletes a user template. Default templates are refused
// with 400.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	var req types.DeleteTemplateRequest
	if !h.decode(w, r, &req) {
		return
	}

	deleted, err := h.store.DeleteTemplate(r.Context(), req.ID)
	if err != nil {
		h.fail(w, r, err, "Failed to delete template")
		return
	}
	if !deleted {
		RespondError(w, http.StatusBadRequest, "Cannot delete default templates")
		return
	}

	h.logger.Info("template deleted", "id", req.ID)
	respondSuccess(w)
}

// decode parses the body and writes a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := ParseJSON(w, r, dest); err != nil {
		h.logger.Warn("bad request body", "method", r.Method, "path", r.URL.Path, "error", err)
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// fail maps a store error to a status and logs it. Validation messages are
// returned to the caller; anything unexpected is replaced with message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, types.ErrValidation):
		h.logger.Warn(message, "method", r.Method, "path", r.URL.Path, "status", http.StatusBadRequest, "error", err)
		RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrNotFound):
		h.logger.Warn(message, "method", r.Method, "path", r.URL.Path, "status", http.StatusNotFound, "error", err)
		RespondError(w, http.StatusNotFound, "Not found")
	default:
		h.logger.Error(message, "method", r.Method, "path", r.URL.Path, "error", err)
		RespondError(w, http.StatusInternalServerError, message)
	}
}
