package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"taskhero/internal/database"
	"taskhero/internal/game"
	"taskhero/internal/logging"
	"taskhero/internal/push"
	"taskhero/internal/server"
)

const defaultReminderHour = 9

func main() {
	logger := logging.Setup(os.Getenv("TASKHERO_LOG_LEVEL"))

	port := os.Getenv("TASKHERO_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("TASKHERO_DB_PATH")
	if dbPath == "" {
		dbPath = "taskhero.db"
	}

	tokenHash := os.Getenv("TASKHERO_API_TOKEN_HASH")
	if tokenHash == "" {
		log.Fatal("TASKHERO_API_TOKEN_HASH is required")
	}

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("TASKHERO_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("TASKHERO_VAPID_PRIVATE_KEY"),
		ReminderHour:    defaultReminderHour,
	}
	if raw := os.Getenv("TASKHERO_REMINDER_HOUR"); raw != "" {
		hour, err := strconv.Atoi(raw)
		if err != nil || hour < 0 || hour > 23 {
			log.Fatalf("invalid TASKHERO_REMINDER_HOUR: %q", raw)
		}
		pushCfg.ReminderHour = hour
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	svc := game.NewService(db)
	if err := svc.SeedDefaultAchievements(context.Background()); err != nil {
		log.Fatalf("failed to seed achievements: %v", err)
	}

	srv := server.New(db, svc, tokenHash, pushCfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}

	// Expired rate-limit entries pile up without a sweeper.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("TaskHero running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
