package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lumina-cms/lumina-cms/internal/app"
	"github.com/lumina-cms/lumina-cms/internal/auth"
	"github.com/lumina-cms/lumina-cms/internal/authz"
	"github.com/lumina-cms/lumina-cms/internal/content/gallery"
	"github.com/lumina-cms/lumina-cms/internal/content/offices"
	"github.com/lumina-cms/lumina-cms/internal/content/projects"
	"github.com/lumina-cms/lumina-cms/internal/content/services"
	"github.com/lumina-cms/lumina-cms/internal/content/sliders"
	"github.com/lumina-cms/lumina-cms/internal/content/team"
	"github.com/lumina-cms/lumina-cms/internal/messages"
	"github.com/lumina-cms/lumina-cms/internal/observability"
	"github.com/lumina-cms/lumina-cms/internal/platform/cache"
	"github.com/lumina-cms/lumina-cms/internal/platform/db"
	"github.com/lumina-cms/lumina-cms/internal/rbac"
	"github.com/lumina-cms/lumina-cms/internal/system"
	"github.com/lumina-cms/lumina-cms/internal/token"
	"github.com/lumina-cms/lumina-cms/internal/users"
	"github.com/lumina-cms/lumina-cms/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTTTL)
	resolver := authz.NewResolver(pool)
	principalStore := authz.NewCachedStore(resolver, redisClient, cfg.AuthzCacheTTL, logger)
	engine := authz.NewEngine(codec, principalStore)
	guard := authz.Middleware{Engine: engine, Logger: logger, Observe: metrics.ObserveAuthz}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, codec)
	authHandler := auth.NewHandler(logger, authService, guard)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, principalStore)
	usersHandler := users.NewHandler(logger, usersService, guard)

	rbacService := rbac.NewService(pool, principalStore)
	rbacHandler := rbac.NewHandler(logger, rbacService, guard)

	// Make sure every known permission exists before the first request.
	syncCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := rbacService.SyncRegistry(syncCtx); err != nil {
		cancel()
		logger.Error("sync permission registry", slog.Any("error", err))
		os.Exit(1)
	}
	cancel()

	slidersHandler := sliders.NewHandler(logger, sliders.NewRepository(pool), guard)
	projectsHandler := projects.NewHandler(logger, projects.NewRepository(pool), guard)
	servicesHandler := services.NewHandler(logger, services.NewRepository(pool), guard)
	galleryHandler := gallery.NewHandler(logger, gallery.NewRepository(pool), guard)
	officesHandler := offices.NewHandler(logger, offices.NewRepository(pool), guard)
	teamHandler := team.NewHandler(logger, team.NewRepository(pool), guard)

	messagesService := messages.NewService(messages.NewRepository(pool), jobClient, logger)
	messagesHandler := messages.NewHandler(logger, messagesService, guard)

	systemService := system.NewService(pool, redisClient, jobClient)
	systemHandler := system.NewHandler(logger, systemService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthHandler:     authHandler,
		UsersHandler:    usersHandler,
		RBACHandler:     rbacHandler,
		SlidersHandler:  slidersHandler,
		ProjectsHandler: projectsHandler,
		ServicesHandler: servicesHandler,
		GalleryHandler:  galleryHandler,
		OfficesHandler:  officesHandler,
		TeamHandler:     teamHandler,
		MessagesHandler: messagesHandler,
		SystemHandler:   systemHandler,
		JobHandler:      jobHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
