package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/shelfside/shelfside/config"
	"github.com/shelfside/shelfside/internal/assistant"
	"github.com/shelfside/shelfside/internal/catalog"
	"github.com/shelfside/shelfside/internal/conversation"
	"github.com/shelfside/shelfside/internal/extract"
	"github.com/shelfside/shelfside/internal/grounding"
	"github.com/shelfside/shelfside/internal/orchestrator"
	"github.com/shelfside/shelfside/internal/runtime"
	"github.com/shelfside/shelfside/internal/telemetry"
)

// Run wires the full service and starts the HTTP listener.
func Run(addr string) error {
	cfg, err := appconfig.LoadConfig()
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Cookie", "Authorization"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()

	dsn, err := cfg.Storage.Postgres.DSN()
	if err != nil {
		return err
	}
	st, err := catalog.NewWithDSN(ctx, dsn)
	if err != nil {
		return err
	}

	registry, sweeper, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	if sweeper != nil {
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("registry sweeper: %w", err)
		}
	}

	if cfg.Assistant.BaseURL == "" {
		return fmt.Errorf("assistant.base_url not configured")
	}
	client := assistant.NewClient(cfg.Assistant.BaseURL, cfg.Assistant.APIKey, cfg.Assistant.AgentID, cfg.Assistant.Timeout)
	runner := assistant.NewRunner(client, registry, cfg.Assistant.PollInterval, cfg.Assistant.PollLimit, cfg.Assistant.MaxBodyBytes)

	tele := telemetry.NewTelemetry(cfg.Telemetry.PeriodicLogs)
	extractor := extract.NewExtractor(runner)
	lookup := grounding.NewLookup(st, cfg.Orchestrator.GroundingLimit)
	orch := orchestrator.New(extractor, lookup, runner, st, tele,
		cfg.Orchestrator.MaxRetries, cfg.Orchestrator.QualityGateDisabled)

	api := e.Group("/api")
	ah := &AskHandler{Orch: orch}
	ah.Register(api)

	if cfg.Server.JWTSecret != "" {
		secret, err := runtime.LoadJWTSecret(cfg)
		if err != nil {
			return err
		}
		auth := &AuthHandler{Store: st, Secret: secret}
		auth.Register(api.Group("/auth"))

		me := api.Group("/me")
		me.Use(runtime.EchoAuthMiddleware(secret))
		me.GET("", func(c echo.Context) error {
			return c.JSON(200, map[string]string{"user_id": c.Get("user_id").(string)})
		})
	} else {
		baseLogger.Printf("jwt secret not configured, auth endpoints disabled")
	}

	if addr == "" {
		addr = cfg.Server.Address
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// buildRegistry selects the conversation registry backend from config.
func buildRegistry(ctx context.Context, cfg *appconfig.Config) (conversation.Registry, *Sweeper, error) {
	switch cfg.Registry.Backend {
	case "redis":
		r, err := conversation.NewRedisRegistry(ctx,
			cfg.Storage.Redis.Host, cfg.Storage.Redis.Port, cfg.Storage.Redis.Password,
			cfg.Storage.Redis.DB, cfg.Storage.Redis.Timeout, cfg.Registry.TTL)
		if err != nil {
			return nil, nil, err
		}
		return r, nil, nil
	default:
		mem := conversation.NewMemoryRegistry(cfg.Registry.TTL)
		if cfg.Registry.TTL > 0 && cfg.Registry.SweepCron != "" {
			return mem, &Sweeper{Registry: mem, Cron: cfg.Registry.SweepCron, Stop: make(chan struct{})}, nil
		}
		return mem, nil, nil
	}
}
