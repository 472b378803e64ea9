package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"taskhero/internal/game"
	"taskhero/internal/handler"
	"taskhero/internal/middleware"
	"taskhero/internal/push"
	"taskhero/internal/store"
	ws "taskhero/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	userH         *handler.UserHandler
	taskH         *handler.TaskHandler
	categoryH     *handler.CategoryHandler
	achievementH  *handler.AchievementHandler
	pushH         *handler.PushHandler
	tokenHash     string
	rateLimiter   *middleware.RateLimiter
	pushService   *push.Service
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, svc *game.Service, tokenHash string, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSt := store.NewPushStore(db)
		pushSvc = push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushSt, svc, pushCfg.ReminderHour, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushSt, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		userH:         handler.NewUserHandler(svc, logger.With("component", "user")),
		taskH:         handler.NewTaskHandler(svc, hub, logger.With("component", "task")),
		categoryH:     handler.NewCategoryHandler(svc, hub, logger.With("component", "category")),
		achievementH:  handler.NewAchievementHandler(svc, logger.With("component", "achievement")),
		pushH:         pushH,
		tokenHash:     tokenHash,
		rateLimiter:   middleware.NewRateLimiter(),
		pushService:   pushSvc,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// PushScheduler returns the daily reminder scheduler, or nil when push is
// not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no token required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// API routes behind bearer-token auth
	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)

	api := middleware.RequireToken(s.tokenHash)(apiMux)
	api = s.rateLimited(api)
	outerMux.Handle("/api/", api)

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.Handler) http.Handler {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	return middleware.RateLimit(s.rateLimiter, keyFunc, 300, time.Minute)(h)
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// User routes
	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.HandleFunc("GET /api/users/{id}/stats", s.userH.Stats)
	mux.HandleFunc("GET /api/users/{id}/achievements", s.userH.Achievements)

	// Task routes
	mux.HandleFunc("POST /api/users/{id}/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/users/{id}/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/users/{id}/tasks/due-today", s.taskH.DueToday)
	mux.HandleFunc("GET /api/users/{id}/tasks/overdue", s.taskH.Overdue)
	mux.HandleFunc("GET /api/users/{id}/tasks/{task_id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/users/{id}/tasks/{task_id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/users/{id}/tasks/{task_id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/users/{id}/tasks/{task_id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/users/{id}/tasks/{task_id}/start", s.taskH.Start)
	mux.HandleFunc("POST /api/users/{id}/tasks/{task_id}/cancel", s.taskH.Cancel)

	// Category routes
	mux.HandleFunc("POST /api/users/{id}/categories", s.categoryH.Create)
	mux.HandleFunc("GET /api/users/{id}/categories", s.categoryH.List)
	mux.HandleFunc("GET /api/users/{id}/categories/stats", s.categoryH.Stats)
	mux.HandleFunc("GET /api/users/{id}/categories/{category_id}", s.categoryH.Get)
	mux.HandleFunc("PUT /api/users/{id}/categories/{category_id}", s.categoryH.Update)
	mux.HandleFunc("DELETE /api/users/{id}/categories/{category_id}", s.categoryH.Delete)

	// Achievement definitions
	mux.HandleFunc("GET /api/achievements", s.achievementH.List)

	// Push notification routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/users/{id}/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}
}
