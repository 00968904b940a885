package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pakhtun2017/compliance-checker/internal/config"
	"github.com/Pakhtun2017/compliance-checker/internal/handlers"
	"github.com/Pakhtun2017/compliance-checker/internal/logger"
	customMiddleware "github.com/Pakhtun2017/compliance-checker/internal/middleware"
	"github.com/Pakhtun2017/compliance-checker/internal/renderer"
	"github.com/Pakhtun2017/compliance-checker/internal/services"
	"github.com/Pakhtun2017/compliance-checker/internal/session"
	"github.com/Pakhtun2017/compliance-checker/views"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", logger.FormatConsole)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := services.NewMinioStore(cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create object store client")
	}

	sessions, closeSessions, err := newSessionStore(ctx, cfg.Session)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create session store")
	}
	defer closeSessions()

	e, err := newServer(cfg, store, sessions, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	// An unreachable bucket is not fatal: the dashboard reports it per request
	probe := services.NewDashboardService(store, cfg.Store.Bucket, cfg.Store.Timeout, log)
	if err := probe.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.Store.Bucket).Msg("bucket not reachable at startup")
	}

	go func() {
		log.Info().Str("addr", cfg.Server.ListenAddr).Str("bucket", cfg.Store.Bucket).Msg("dashboard listening")
		if err := e.Start(cfg.Server.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newSessionStore picks Redis when REDIS_URL is set and sealed cookies
// otherwise. The returned func releases the backing connection.
func newSessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, func(), error) {
	codec, err := session.NewCodec(cfg.Secret)
	if err != nil {
		return nil, nil, err
	}

	if cfg.RedisURL == "" {
		return session.NewCookieStore(codec, cfg.TTL), func() {}, nil
	}

	client, err := session.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(client, codec, cfg.TTL), func() { _ = client.Close() }, nil
}

func newServer(cfg *config.Config, store services.ObjectStore, sessions session.Store, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Services
	dashboardService := services.NewDashboardService(store, cfg.Store.Bucket, cfg.Store.Timeout, log)
	authHandler := handlers.NewAuthHandler(sessions, cfg.Session.Password, log)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, sessions)

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(customMiddleware.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(customMiddleware.SecurityHeaders())
	if cfg.Server.MaxUploadSize != "" {
		e.Use(middleware.BodyLimit(cfg.Server.MaxUploadSize))
	}
	// Auth runs before CSRF so anonymous requests are redirected, not rejected
	e.Use(customMiddleware.AuthMiddleware(sessions))
	e.Use(customMiddleware.CSRF())

	// Template Renderer
	r, err := renderer.New(views.FS)
	if err != nil {
		return nil, err
	}
	e.Renderer = r

	// Public Routes (auth middleware will skip these)
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout)

	// Protected Routes
	e.GET("/", dashboardHandler.Index)
	e.POST("/upload", dashboardHandler.Upload)
	e.POST("/delete", dashboardHandler.Delete)
	e.GET("/download", dashboardHandler.Download)

	e.Server.ReadHeaderTimeout = 10 * time.Second

	return e, nil
}
