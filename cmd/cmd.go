package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tapp-club-backend/internal/config"
	"tapp-club-backend/internal/handlers"
	"tapp-club-backend/internal/middleware"
	"tapp-club-backend/internal/repository"
	"tapp-club-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const agentBurst = 5

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse database configuration")
	}
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConns = cfg.Database.MaxConns

	db, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().
		Int32("min_conns", cfg.Database.MinConns).
		Int32("max_conns", cfg.Database.MaxConns).
		Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	eventRepo := repository.NewEventRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	postRepo := repository.NewPostRepository(db)

	// Initialize services
	pushService, err := services.NewPushService(
		cfg.APNS.KeyFile,
		cfg.APNS.KeyID,
		cfg.APNS.TeamID,
		cfg.APNS.Topic,
		cfg.APNS.Production,
		userRepo,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push service")
	}
	if !pushService.Enabled() {
		log.Info().Msg("Push notifications disabled: no APNs key configured")
	}

	uploadService, err := services.NewUploadService(
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
		eventRepo,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create upload service")
	}
	if !uploadService.Enabled() {
		log.Info().Msg("Gallery uploads disabled: no S3 bucket configured")
	}

	hub := services.NewConversationHub()
	userService := services.NewUserService(userRepo, friendshipRepo, eventRepo)
	friendshipService := services.NewFriendshipService(friendshipRepo, pushService)
	eventService := services.NewEventService(eventRepo)
	groupService := services.NewGroupService(groupRepo, conversationRepo, hub, pushService)
	postService := services.NewPostService(postRepo, eventRepo)
	agentService := services.NewAgentService(cfg.Agent.Endpoint, cfg.Agent.APIKey, cfg.Agent.Model)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	userHandler := handlers.NewUserHandler(userService)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService)
	eventHandler := handlers.NewEventHandler(eventService, uploadService)
	groupHandler := handlers.NewGroupHandler(groupService)
	postHandler := handlers.NewPostHandler(postService)
	agentHandler := handlers.NewAgentHandler(agentService)
	streamHandler := handlers.NewStreamHandler(hub, groupService)

	agentLimiter := middleware.NewRateLimiter(cfg.Agent.RequestsPerMinute, agentBurst)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Public routes
	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)

	// API routes
	r.Group(func(api chi.Router) {
		api.Use(middleware.BearerAuth(cfg.Auth.JWTSecret))

		api.Post("/users", userHandler.Resolve)
		api.Get("/users/by-sub/{sub}", userHandler.GetBySubject)
		api.Patch("/users/{id}", userHandler.Update)
		api.Put("/users/{id}/push-token", userHandler.UpdatePushToken)
		api.Get("/users/{id}/profile", userHandler.Profile)
		api.Get("/users/{id}/groups", groupHandler.ListForUser)

		api.Post("/friend-requests", friendshipHandler.Send)
		api.Patch("/friend-requests/{requester_id}", friendshipHandler.Respond)

		api.Post("/events", eventHandler.Create)
		api.Get("/events/{id}", eventHandler.Get)
		api.Patch("/events/{id}", eventHandler.Update)
		api.Post("/events/{id}/members", eventHandler.AddMembers)
		api.Post("/events/{id}/pictures", eventHandler.AddPicture)
		api.Post("/events/{id}/pictures/upload-url", eventHandler.UploadURL)
		api.Post("/events/{id}/tap", eventHandler.Tap)

		api.Post("/groups", groupHandler.Create)
		api.Post("/groups/{id}/members", groupHandler.AddMembers)
		api.Get("/groups/{id}/conversations", groupHandler.GetConversation)
		api.Post("/groups/{id}/conversations", groupHandler.PostMessage)

		api.Post("/posts", postHandler.Create)
		api.Get("/posts/{id}", postHandler.Get)
		api.Post("/posts/{id}/pictures", postHandler.AddPicture)

		api.Group(func(agent chi.Router) {
			agent.Use(agentLimiter.Handler)
			agent.Get("/agent", agentHandler.Query)
			agent.Get("/agent/", agentHandler.Query)
		})
	})

	// WebSocket route
	r.Get("/groups/{id}/ws", streamHandler.Stream)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
