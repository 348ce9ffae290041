package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/DMlogobardi/Quizy-sub001/internal/auth"
	"github.com/DMlogobardi/Quizy-sub001/internal/cache"
	"github.com/DMlogobardi/Quizy-sub001/internal/config"
	"github.com/DMlogobardi/Quizy-sub001/internal/database"
	"github.com/DMlogobardi/Quizy-sub001/internal/handler"
	"github.com/DMlogobardi/Quizy-sub001/internal/middleware"
	"github.com/DMlogobardi/Quizy-sub001/internal/queue"
	"github.com/DMlogobardi/Quizy-sub001/internal/repository"
	"github.com/DMlogobardi/Quizy-sub001/internal/router"
	"github.com/DMlogobardi/Quizy-sub001/internal/service"
	"github.com/DMlogobardi/Quizy-sub001/internal/session"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	users := repository.NewUserRepo(db)
	quizzes := repository.NewQuizRepo(db)

	// Session/authorization core: codec signs credentials, the registry
	// tracks which of them are still live, the cache holds each user's
	// quizzes rebound to the current request before being handed out.
	codec := auth.NewCodec(cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute)
	guard := auth.NewGuard(codec)
	registry := session.NewRegistry()
	quizCache := cache.NewQuizCache(cache.NewRepoReattacher(quizzes))

	authSvc := service.NewAuthService(users, codec, guard, registry, quizCache, queue.PublishEvent, cfg.BcryptCost)
	quizSvc := service.NewQuizService(quizzes, quizCache, guard, registry, queue.PublishEvent)

	// Audit consumer; keeps reconnecting on broker outages.
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(echomw.Recover())
	if rdb := config.NewRedisClient(); rdb != nil {
		e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	} else {
		log.Println("redis unavailable; rate limiting disabled")
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), codec, registry)
	router.RegisterQuizzes(e, handler.NewQuizHandler(quizSvc), codec, registry)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
