package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/code-gritt/klientel/config"
	"github.com/code-gritt/klientel/pkg/ai/llm"
	"github.com/code-gritt/klientel/pkg/analytics"
	"github.com/code-gritt/klientel/pkg/api/handlers"
	apimw "github.com/code-gritt/klientel/pkg/api/middleware"
	"github.com/code-gritt/klientel/pkg/auth"
	"github.com/code-gritt/klientel/pkg/cache"
	"github.com/code-gritt/klientel/pkg/chatbot"
	"github.com/code-gritt/klientel/pkg/comments"
	"github.com/code-gritt/klientel/pkg/email"
	"github.com/code-gritt/klientel/pkg/export"
	"github.com/code-gritt/klientel/pkg/graph"
	"github.com/code-gritt/klientel/pkg/jobs"
	"github.com/code-gritt/klientel/pkg/leads"
	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
	custommw "github.com/code-gritt/klientel/pkg/middleware"
	"github.com/code-gritt/klientel/pkg/notes"
	"github.com/code-gritt/klientel/pkg/outreach"
	"github.com/code-gritt/klientel/pkg/store"
	"github.com/code-gritt/klientel/pkg/tags"
	"github.com/code-gritt/klientel/pkg/teams"
	"github.com/code-gritt/klientel/pkg/users"
	"github.com/code-gritt/klientel/pkg/ws"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	log.Info("configuration loaded", "environment", cfg.APIEnvironment)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Warn("sentry init failed", "error", err)
		} else {
			log.Info("sentry initialized", "environment", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Info("sentry disabled, no DSN configured")
	}

	ctx := context.Background()

	// Database
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	st := store.New(db)

	// Redis
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	prometheusMetrics := metrics.New()

	// Analytics engine with the configured funnel
	engine, err := analytics.NewEngine(cfg.PipelineStages)
	if err != nil {
		log.Error("invalid pipeline stages", "error", err)
		os.Exit(1)
	}

	// Services
	tokenBlacklist := auth.NewTokenBlacklist(redisClient)
	emailService := email.NewService(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName, log)
	analyticsService := analytics.NewService(st, engine, log)
	userService := users.NewService(st, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.StartingCredits, log, prometheusMetrics)
	leadService := leads.NewService(st, cfg.PipelineStages, log, prometheusMetrics)
	tagService := tags.NewService(st, log)
	noteService := notes.NewService(st, log)
	teamService := teams.NewService(st, emailService, cfg.FrontendURL, log)
	hub := ws.NewHub(log, prometheusMetrics, cfg.CORSAllowedOrigins)
	commentService := comments.NewService(st, hub, log)
	outreachService := outreach.NewService(st, emailService, log, prometheusMetrics)
	llmClient := llm.NewOpenAIClient(llm.Config{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	}, log)
	chatbotService := chatbot.NewService(st, analyticsService, llmClient, log, prometheusMetrics)
	exportService := export.NewService(analyticsService, log, prometheusMetrics)

	// GraphQL schema
	resolver := &graph.Resolver{
		Users:      userService,
		Leads:      leadService,
		Tags:       tagService,
		Notes:      noteService,
		Teams:      teamService,
		Comments:   commentService,
		Analytics:  analyticsService,
		Outreach:   outreachService,
		Chatbot:    chatbotService,
		Export:     exportService,
		Activities: st,
		Blacklist:  tokenBlacklist,
		Validator:  validator.New(),
		Log:        log,
	}
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		log.Error("schema build failed", "error", err)
		os.Exit(1)
	}

	// Cron jobs
	scheduler := jobs.NewScheduler(teamService, st, cfg.PipelineStages, prometheusMetrics, log)
	if err := scheduler.Start(); err != nil {
		log.Error("cron start failed", "error", err)
		os.Exit(1)
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true

	globalRateLimiter := custommw.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	e.Use(echomw.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(prometheusMetrics.Middleware())
	e.Use(echomw.CORSWithConfig(custommw.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(custommw.SecurityHeaders(custommw.SecurityHeadersConfig{}))
	e.Use(echomw.Gzip())
	e.Use(globalRateLimiter.RateLimitMiddleware())
	e.Use(apimw.JWT(cfg.JWTSecret, tokenBlacklist))

	graphqlHandler := handlers.NewGraphQLHandler(schema, log)
	healthHandler := handlers.NewHealthHandler(db)
	wsHandler := handlers.NewWSHandler(hub, leadService)

	e.POST("/graphql", graphqlHandler.Handle)
	e.GET("/health", healthHandler.Handle)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/ws/leads/:id", wsHandler.Handle)

	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Info("starting server", "address", address, "stages", cfg.PipelineStages)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Error("server start failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
