package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"taskhero/internal/game"
	"taskhero/internal/model"
	"taskhero/internal/store"
	"taskhero/internal/websocket"
)

type TaskHandler struct {
	svc    *game.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewTaskHandler(svc *game.Service, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, hub: hub, logger: logger}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type taskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	CategoryID  *int64  `json:"category_id"`
}

// Create handles POST /api/users/{id}/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.svc.CreateTask(r.Context(), userID, game.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create task")
		return
	}

	h.broadcast(websocket.NewMessage("task", "created", task.ID, userID, nil))

	writeJSON(w, http.StatusCreated, task)
}

// List handles GET /api/users/{id}/tasks with optional status and category
// filters. status accepts a comma-separated set; category accepts an id or
// the literal "none" for uncategorized tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	var filter store.ListFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := model.Status(strings.TrimSpace(s))
			if !status.IsValid() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := r.URL.Query().Get("category"); raw != "" {
		if raw == "none" {
			filter.Uncategorized = true
		} else {
			categoryID, err := parseInt64(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category filter"})
				return
			}
			filter.CategoryID = &categoryID
		}
	}

	tasks, err := h.svc.ListTasks(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /api/users/{id}/tasks/{task_id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.taskIDs(w, r)
	if !ok {
		return
	}

	task, err := h.svc.GetTask(r.Context(), taskID, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get task")
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

type taskUpdateRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Priority      *string `json:"priority"`
	DueDate       *string `json:"due_date"`
	ClearDueDate  bool    `json:"clear_due_date"`
	CategoryID    *int64  `json:"category_id"`
	ClearCategory bool    `json:"clear_category"`
}

// Update handles PUT /api/users/{id}/tasks/{task_id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.taskIDs(w, r)
	if !ok {
		return
	}

	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	params := game.UpdateTaskParams{
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
	}
	if req.Priority != nil {
		priority := model.Priority(*req.Priority)
		params.Priority = &priority
	}

	task, err := h.svc.UpdateTask(r.Context(), taskID, userID, params)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update task")
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "updated", taskID, userID, nil))

	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /api/users/{id}/tasks/{task_id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.taskIDs(w, r)
	if !ok {
		return
	}

	deleted, err := h.svc.DeleteTask(r.Context(), taskID, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to delete task")
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "deleted", taskID, userID, nil))

	w.WriteHeader(http.StatusNoContent)
}

// Complete handles POST /api/users/{id}/tasks/{task_id}/complete. A task
// already done or cancelled reads as not found, so repeat calls cannot
// double-credit.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.taskIDs(w, r)
	if !ok {
		return
	}

	result, err := h.svc.CompleteTask(r.Context(), taskID, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to complete task")
		return
	}
	if result == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	h.broadcast(websocket.NewMessage("task", "completed", taskID, userID, map[string]any{
		"xp_awarded": result.XPAwarded,
	}))
	for _, a := range result.Unlocked {
		h.broadcast(websocket.NewMessage("achievement", "unlocked", a.ID, userID, map[string]any{
			"name": a.Name,
		}))
	}
	if result.LevelUp {
		h.broadcast(websocket.NewMessage("user", "level_up", userID, userID, map[string]any{
			"level": result.LevelAfter,
		}))
	}

	writeJSON(w, http.StatusOK, result)
}

// Start handles POST /api/users/{id}/tasks/{task_id}/start
func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "started", "failed to start task", h.svc.StartTask)
}

// Cancel handles POST /api/users/{id}/tasks/{task_id}/cancel
func (h *TaskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancelled", "failed to cancel task", h.svc.CancelTask)
}

// DueToday handles GET /api/users/{id}/tasks/due-today
func (h *TaskHandler) DueToday(w http.ResponseWriter, r *http.Request) {
	h.listSlice(w, r, h.svc.TasksDueToday, "failed to list tasks due today")
}

// Overdue handles GET /api/users/{id}/tasks/overdue
func (h *TaskHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	h.listSlice(w, r, h.svc.OverdueTasks, "failed to list overdue tasks")
}

func (h *TaskHandler) transition(w http.ResponseWriter, r *http.Request, action, errMsg string, fn func(ctx context.Context, taskID, userID int64) (*model.Task, error)) {
	userID, taskID, ok := h.taskIDs(w, r)
	if !ok {
		return
	}

	task, err := fn(r.Context(), taskID, userID)
	if err != nil {
		writeServiceError(w, h.logger, err, errMsg)
		return
	}
	if task == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
		return
	}

	h.broadcast(websocket.NewMessage("task", action, taskID, userID, nil))

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) listSlice(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userID int64) ([]model.Task, error), msg string) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	tasks, err := fn(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err, msg)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) taskIDs(w http.ResponseWriter, r *http.Request) (userID, taskID int64, ok bool) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return 0, 0, false
	}
	taskID, err = pathID(r, "task_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid task id"})
		return 0, 0, false
	}
	return userID, taskID, true
}
