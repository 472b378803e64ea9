package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"taskhero/internal/game"
	"taskhero/internal/model"
)

type UserHandler struct {
	svc    *game.Service
	logger *slog.Logger
}

func NewUserHandler(svc *game.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

type userRequest struct {
	ExternalID int64   `json:"external_id"`
	Username   *string `json:"username"`
	FirstName  string  `json:"first_name"`
	LastName   *string `json:"last_name"`
}

// Create handles POST /api/users: get-or-create by external id, so the
// front-end can call it on every first contact without checking beforehand.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.ExternalID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "external_id is required"})
		return
	}

	user, err := h.svc.GetOrCreateUser(r.Context(), req.ExternalID, req.Username, req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to register user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get user")
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Stats handles GET /api/users/{id}/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	stats, err := h.svc.Stats(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get stats")
		return
	}
	if stats == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Achievements handles GET /api/users/{id}/achievements
func (h *UserHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get user")
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	unlocked, err := h.svc.UserAchievements(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list achievements")
		return
	}
	if unlocked == nil {
		unlocked = []game.UnlockedAchievement{}
	}
	writeJSON(w, http.StatusOK, unlocked)
}
