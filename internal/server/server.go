package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/vinod-soni-microsoft/foundry-model-router-care-triage/config"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/kb"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/kb/bleveindex"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/store"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/telemetry"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/internal/triage"
	"github.com/vinod-soni-microsoft/foundry-model-router-care-triage/provider"
)

// Run loads configuration, wires the pipeline's collaborators and serves the
// HTTP API until the listener fails. addr, when non-empty, overrides
// server.address from config.
func Run(addr string, cfgPath string) error {
	cfg, err := appconfig.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Provider.Validate(); err != nil {
		return err
	}

	e := newEcho(cfg.Server.CORSOrigins)

	backend, err := provider.NewBackend(provider.Foundry, cfg.Provider)
	if err != nil {
		return err
	}

	retriever, closeIdx, err := buildRetriever(cfg.Search)
	if err != nil {
		return err
	}
	if closeIdx != nil {
		defer closeIdx()
	}

	ctx := context.Background()
	sink, st, err := buildSink(ctx, cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}
	recorder := telemetry.NewRecorder(cfg.Telemetry, sink)

	pipe := triage.NewPipeline(backend, retriever, recorder, cfg.Provider, cfg.Search.TopK)

	api := e.Group("/api")
	if cfg.Server.JWTSecret != "" {
		api.Use(AuthMiddleware([]byte(cfg.Server.JWTSecret)))
	}
	ch := &ChatHandler{Pipeline: pipe}
	ch.Register(api)
	if st != nil {
		dh := &DecisionsHandler{Store: st}
		dh.Register(api)
	}

	if addr == "" {
		addr = cfg.Server.Address
		if addr == "" {
			addr = ":8000"
		}
	}
	if addr[0] != ':' && !hasHost(addr) {
		addr = ":" + addr
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// newEcho builds the shared middleware stack: panic recovery, CORS, and a
// unified JSON error handler that maps guardrail rejections to 400 while
// everything else surfaces as its HTTP code or a 500.
func newEcho(corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var blocked *triage.BlockedError
		if errors.As(err, &blocked) {
			code = http.StatusBadRequest
			msg = blocked.Verdict.Warning
		} else if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	if len(corsOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
		}))
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(200, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}

// buildRetriever opens the bleve index when search is enabled, seeding it on
// first open so a fresh deployment answers clinical questions out of the box.
func buildRetriever(cfg appconfig.SearchConfig) (kb.Retriever, func() error, error) {
	if !cfg.Enabled {
		return kb.NoopRetriever{}, nil, nil
	}
	idx, err := bleveindex.Open(cfg.IndexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open search index: %w", err)
	}
	if n, err := idx.DocCount(); err == nil && n == 0 {
		if err := idx.Seed(); err != nil {
			_ = idx.Close()
			return nil, nil, fmt.Errorf("seed search index: %w", err)
		}
	}
	return idx, idx.Close, nil
}

// buildSink assembles the audit fan-out from config: Redis stream and/or
// Postgres, nil when neither is configured. The returned store, when non-nil,
// is owned by the caller.
func buildSink(ctx context.Context, cfg *appconfig.Config) (telemetry.Sink, *store.Store, error) {
	var sinks []telemetry.Sink
	if cfg.Telemetry.RedisStream != "" {
		if cfg.Databases.Redis.Host == "" || cfg.Databases.Redis.Port == "" {
			return nil, nil, fmt.Errorf("redis stream configured but redis not (databases.redis.host/port)")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Databases.Redis.Host, cfg.Databases.Redis.Port),
			Password: cfg.Databases.Redis.Pass,
			DB:       cfg.Databases.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("redis connection failed (%s:%s): %w", cfg.Databases.Redis.Host, cfg.Databases.Redis.Port, err)
		}
		sinks = append(sinks, telemetry.NewRedisSink(rdb, cfg.Telemetry.RedisStream, cfg.Telemetry.RedisMaxLen))
	}
	var st *store.Store
	if cfg.Telemetry.PostgresAudit {
		dsn, err := cfg.Databases.Postgres.DSN()
		if err != nil {
			return nil, nil, err
		}
		st, err = store.NewWithDSN(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, store.NewAuditSink(st))
	}
	switch len(sinks) {
	case 0:
		return nil, nil, nil
	case 1:
		return sinks[0], st, nil
	default:
		return telemetry.NewMultiSink(sinks...), st, nil
	}
}

func hasHost(addr string) bool {
	for i := 0; i < len(addr); i++ {
		if addr[i] == ':' {
			return i > 0
		}
	}
	return false
}
