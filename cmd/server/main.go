package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/job-application-tracker/internal/auth"
	"github.com/iliyamo/job-application-tracker/internal/config"
	"github.com/iliyamo/job-application-tracker/internal/database"
	"github.com/iliyamo/job-application-tracker/internal/handler"
	"github.com/iliyamo/job-application-tracker/internal/middleware"
	"github.com/iliyamo/job-application-tracker/internal/queue"
	"github.com/iliyamo/job-application-tracker/internal/repository"
	"github.com/iliyamo/job-application-tracker/internal/router"
	queue_publisher "github.com/iliyamo/job-application-tracker/internal/service"
	"github.com/iliyamo/job-application-tracker/internal/session"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Sessions live in Redis so logins survive restarts and are shared
	// between instances. Without Redis the service still runs on the
	// in-process store, which is good enough for local development.
	var sessions session.Store
	rdb := config.NewRedisClient()
	if rdb != nil {
		sessions = session.NewRedisStore(rdb)
	} else {
		log.Printf("redis unavailable; falling back to in-memory sessions")
		sessions = session.NewMemoryStore()
	}

	users := repository.NewUserRepo(db)
	apps := repository.NewApplicationRepo(db)

	provider := auth.NewProvider(cfg)
	login := auth.NewLoginService(users)

	authHandler := handler.NewAuthHandler(cfg, provider, login, users, sessions)
	appHandler := handler.NewApplicationHandler(apps)
	appHandler.Publish = queue_publisher.PublishApplicationEvent

	// Background consumer turns lifecycle events into log lines; it runs its
	// own reconnect loop and never stops the server.
	go func() {
		if err := queue.StartApplicationConsumer(); err != nil {
			log.Printf("application consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	// CORS first so preflights and error responses reach the browser client.
	e.Use(middleware.CORS(cfg.ClientOrigin))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, sessions)
	router.RegisterApplications(e, appHandler, sessions)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
