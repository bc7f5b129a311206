package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/repdesk/repdesk/cmd/repdesk/cli"
	"github.com/repdesk/repdesk/internal/app"
	"github.com/repdesk/repdesk/internal/auth"
	"github.com/repdesk/repdesk/internal/crm"
	"github.com/repdesk/repdesk/internal/observability"
	"github.com/repdesk/repdesk/internal/platform/cache"
	"github.com/repdesk/repdesk/internal/platform/db"
	"github.com/repdesk/repdesk/internal/rbac"
	"github.com/repdesk/repdesk/internal/reporting"
	reportingdb "github.com/repdesk/repdesk/internal/reporting/db"
	"github.com/repdesk/repdesk/internal/reporting/export"
	reportinghttp "github.com/repdesk/repdesk/internal/reporting/http"
	"github.com/repdesk/repdesk/internal/shared"
	"github.com/repdesk/repdesk/jobs"
	"github.com/repdesk/repdesk/report"
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

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobsCommand(ctx, cfg, os.Args[2:]); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	dbpool, err := db.New(ctx, cfg.Database())
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "repdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()

	rbacService := rbac.NewService(dbpool)
	if err := rbacService.EnsureCatalog(ctx, shared.AllScopes()); err != nil {
		logger.Warn("seed permission catalog", slog.Any("error", err))
	}
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService, rbacMiddleware)

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL).WithLookupHook(metrics.RecordCacheLookup)
	if err := reportCache.ListenForInvalidation(ctx, reporting.BumpChannel); err != nil {
		logger.Warn("subscribe report invalidation", slog.Any("error", err))
	}
	reportService := reporting.NewService(reportingdb.New(dbpool), reportCache).
		WithDefaultTopN(cfg.ReportDefaultTopN)

	reportHandler := reportinghttp.NewHandler(
		logger,
		reportService,
		reportCache,
		export.NewPDFExporter(newPDFRenderer(cfg)),
		rbacService,
		reporting.FormatConfig{CurrencyUnit: cfg.ReportCurrencyUnit, Locale: cfg.ReportLocale},
	).WithMetrics(metrics)
	if cfg.PDFRenderer == app.PDFRendererGotenberg || cfg.PDFRTLRenderer == app.PDFRendererGotenberg {
		reportHandler.WithPinger(report.NewClient(cfg.GotenbergURL))
	}

	crmService := crm.NewService(crm.NewRepository(dbpool), reportCache, logger)
	crmHandler := crm.NewHandler(logger, crmService, rbacService)

	inspector := asynq.NewInspector(cfg.Redis().Asynq())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		CRMHandler:         crmHandler,
		ReportHandler:      reportHandler,
		PermissionsHandler: permissionsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("pdf_renderer", cfg.PDFRenderer))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func newPDFRenderer(cfg *app.Config) export.Renderer {
	gotenberg := export.HTMLRenderer{Converter: report.NewClient(cfg.GotenbergURL)}
	if cfg.PDFRenderer != app.PDFRendererLocal {
		return gotenberg
	}
	router := export.LocaleRouter{Default: export.NewMarotoRenderer()}
	if cfg.PDFRTLRenderer == app.PDFRendererGotenberg {
		router.RTL = gotenberg
	}
	return router
}

func runJobsCommand(ctx context.Context, cfg *app.Config, args []string) error {
	jobsCLI, err := cli.NewJobsCLI(cfg.Redis().Asynq())
	if err != nil {
		return err
	}
	defer func() { _ = jobsCLI.Close() }()
	if err := jobsCLI.Run(ctx, args, os.Stdout); err != nil {
		return fmt.Errorf("repdesk jobs: %w", err)
	}
	return nil
}
