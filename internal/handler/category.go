package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"taskhero/internal/game"
	"taskhero/internal/model"
	"taskhero/internal/websocket"
)

type CategoryHandler struct {
	svc    *game.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewCategoryHandler(svc *game.Service, hub *websocket.Hub, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, hub: hub, logger: logger}
}

func (h *CategoryHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Create handles POST /api/users/{id}/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	category, err := h.svc.CreateCategory(r.Context(), userID, req.Name, req.Color)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create category")
		return
	}

	h.broadcast(websocket.NewMessage("category", "created", category.ID, userID, nil))

	writeJSON(w, http.StatusCreated, category)
}

// List handles GET /api/users/{id}/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	categories, err := h.svc.ListCategories(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// Get handles GET /api/users/{id}/categories/{category_id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := h.categoryIDs(w, r)
	if !ok {
		return
	}

	category, err := h.svc.GetCategory(r.Context(), categoryID, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get category")
		return
	}
	if category == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}
	writeJSON(w, http.StatusOK, category)
}

type categoryUpdateRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// Update handles PUT /api/users/{id}/categories/{category_id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := h.categoryIDs(w, r)
	if !ok {
		return
	}

	var req categoryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	category, err := h.svc.UpdateCategory(r.Context(), categoryID, userID, req.Name, req.Color)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update category")
		return
	}
	if category == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}

	h.broadcast(websocket.NewMessage("category", "updated", categoryID, userID, nil))

	writeJSON(w, http.StatusOK, category)
}

// Delete handles DELETE /api/users/{id}/categories/{category_id}. Tasks in
// the category survive as uncategorized.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := h.categoryIDs(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.DeleteCategory(r.Context(), categoryID, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to delete category")
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}

	h.broadcast(websocket.NewMessage("category", "deleted", categoryID, userID, nil))

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /api/users/{id}/categories/stats
func (h *CategoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	stats, err := h.svc.CategoryStats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get category stats")
		return
	}
	if stats == nil {
		stats = []model.CategoryStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *CategoryHandler) categoryIDs(w http.ResponseWriter, r *http.Request) (userID, categoryID int64, ok bool) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return 0, 0, false
	}
	categoryID, err = pathID(r, "category_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return 0, 0, false
	}
	return userID, categoryID, true
}
