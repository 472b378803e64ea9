package handler

import (
	"log/slog"
	"net/http"

	"taskhero/internal/game"
	"taskhero/internal/model"
)

type AchievementHandler struct {
	svc    *game.Service
	logger *slog.Logger
}

func NewAchievementHandler(svc *game.Service, logger *slog.Logger) *AchievementHandler {
	return &AchievementHandler{svc: svc, logger: logger}
}

// List handles GET /api/achievements
func (h *AchievementHandler) List(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.svc.ListAchievements(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list achievements")
		return
	}
	if achievements == nil {
		achievements = []model.Achievement{}
	}
	writeJSON(w, http.StatusOK, achievements)
}
