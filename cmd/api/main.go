// Package main is the entrypoint for the Flotech API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/flotech/flotech/internal/auth"
	"github.com/flotech/flotech/internal/cache"
	"github.com/flotech/flotech/internal/config"
	"github.com/flotech/flotech/internal/forward"
	"github.com/flotech/flotech/internal/handler"
	"github.com/flotech/flotech/internal/metrics"
	"github.com/flotech/flotech/internal/middleware"
	"github.com/flotech/flotech/internal/repository"
	"github.com/flotech/flotech/internal/server"
	"github.com/flotech/flotech/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Federated sign-in is optional; the password flow works without it.
	var google *auth.GoogleProvider
	if cfg.FederatedEnabled() {
		google, err = auth.NewGoogleProvider(ctx, auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		if err != nil {
			logger.Error("failed to initialize Google provider", "error", err)
			os.Exit(1)
		}
		logger.Info("federated sign-in enabled", "provider", "google")
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	forwarder := forward.New(cfg.ForwardWebhookURL, cfg.ForwardTimeout, metrics.NewNoop(), logger)
	if !forwarder.Enabled() {
		logger.Warn("API key forwarding disabled: FORWARD_WEBHOOK_URL not set")
	}

	authState := auth.NewState()
	authState.Start(nil)

	accountService := service.NewAccountService(
		repo, cacheClient, tokens, forwarder, authState, cfg.ResetTokenTTL, logger,
	)
	ingestService := service.NewIngestService(repo, cacheClient, metrics.NewNoop(), logger)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(accountService, google, cacheClient, logger)
	ingestHandler := handler.NewIngestHandler(ingestService, cfg.MaxRequestBodySize, logger)
	meetingHandler := handler.NewMeetingHandler(repo, logger)

	r := setupRouter(h, healthHandler, authHandler, ingestHandler, meetingHandler, tokens, cacheClient, cfg, logger)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("auth state", func(context.Context) error {
		authState.Stop()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	ingestHandler *handler.IngestHandler,
	meetingHandler *handler.MeetingHandler,
	tokens *auth.TokenService,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: cfg.IsDevelopment(),
	}))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Inbound transcript webhook. Unauthenticated at the transport
	// level; the payload's API key attributes the delivery. It manages
	// its own permissive CORS headers.
	r.HandleFunc("/webhook/fireflies", ingestHandler.Receive)

	authCfg := middleware.AuthConfig{
		Logger:      logger,
		Tokens:      tokens,
		Revocations: cacheClient,
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(corsCfg))
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

		// Account endpoints that establish a session
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Post("/reset-password/confirm", authHandler.ConfirmResetPassword)
			r.Get("/google", authHandler.GoogleLogin)
			r.Get("/google/callback", authHandler.GoogleCallback)

			// Session-scoped endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(authCfg))
				r.Post("/signout", authHandler.SignOut)
				r.Get("/api-key", authHandler.GetAPIKey)
				r.Put("/api-key", authHandler.UpdateAPIKey)
			})
		})

		// Ingested data, session-scoped
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			r.Get("/meetings", meetingHandler.List)
			r.Get("/meetings/{id}", meetingHandler.Get)
			r.Get("/ingestions", meetingHandler.ListIngestions)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
