package main

import (
	"context"
	"log"
	"net/http"

	_ "gatehouse/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"gatehouse/internal/auth"
	"gatehouse/internal/cache"
	"gatehouse/internal/config"
	"gatehouse/internal/db"
	"gatehouse/internal/handler"
	"gatehouse/internal/model"
	"gatehouse/internal/repository"
	"gatehouse/internal/router"
	"gatehouse/internal/service"
	"gatehouse/internal/session"
	"gatehouse/internal/store"
)

// @title Gatehouse API
// @version 1.0
// @description Demo authentication and session service backed by a local document store.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	docs := buildDocumentStore(cfg)
	users, err := buildUserRepository(cfg, docs)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	clock := session.NewClock()

	sessions := session.NewManager(docs, clock, session.Config{
		WarnAfter:   cfg.SessionWarning,
		ExpireAfter: cfg.SessionTimeout,
		OnWarning: func(identity model.Identity) {
			log.Printf("session for %s expiring soon", identity.Username)
		},
		OnExpire: func(identity model.Identity) {
			log.Printf("session for %s expired from inactivity", identity.Username)
		},
	})
	defer sessions.Stop()

	// Resume a session left over from a previous run, if any.
	if restored, err := sessions.Restore(context.Background()); err != nil {
		log.Printf("session restore: %v", err)
	} else if restored {
		if identity, ok := sessions.Identity(); ok {
			log.Printf("restored session for %s", identity.Username)
		}
	}

	limiter := auth.NewRateLimiter(cfg.MaxLoginAttempts, cfg.LoginAttemptWindow, nil)
	csrf := auth.NewCSRFRegistry(nil)

	// Initialize services
	authService := service.NewAuthService(users, sessions, limiter, csrf)
	userService := service.NewUserService(users)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	sessionHandler := handler.NewSessionHandler(sessions)
	userHandler := handler.NewUserHandler(userService, sessions)

	guard := &router.Guard{
		Sessions: sessions,
		Users:    users,
		Auth:     authService,
	}

	// Register routes
	router.Register(e, cfg, guard, authHandler, sessionHandler, userHandler)

	if cfg.SwaggerHost != "" {
		log.Printf("Swagger documentation available at: http://%s/swagger/index.html", cfg.SwaggerHost)
	} else {
		log.Printf("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.ServerPort)
	}

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// buildDocumentStore selects the session document backend. The mysql
// backend keeps credentials relational but still stores the session
// document locally.
func buildDocumentStore(cfg *config.Config) store.DocumentStore {
	switch cfg.StorageBackend {
	case "memory":
		return store.NewMemory()
	case "redis":
		return store.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	default:
		return store.NewFile(cfg.StorageFile)
	}
}

// buildUserRepository selects the credential backend. Document
// backends share the session document store; redis-adjacent backends
// wrap the repository with the list cache so every mutation path,
// auth or admin, invalidates the cached listing.
func buildUserRepository(cfg *config.Config, docs store.DocumentStore) (repository.UserRepository, error) {
	switch cfg.StorageBackend {
	case "mysql":
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		if err := gormDB.AutoMigrate(&model.User{}); err != nil {
			return nil, err
		}
		repo := repository.NewGormUserRepository(gormDB)
		return repository.NewCachedUserRepository(repo, cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)), nil
	case "redis":
		repo := repository.NewDocumentUserRepository(docs, repository.SeedUsers())
		return repository.NewCachedUserRepository(repo, cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)), nil
	default:
		return repository.NewDocumentUserRepository(docs, repository.SeedUsers()), nil
	}
}
