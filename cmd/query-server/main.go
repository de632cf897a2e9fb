// cmd/query-server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"campaign-query/internal/common/config"
	"campaign-query/internal/common/logger"
	"campaign-query/internal/common/observability"
	"campaign-query/internal/dataaccess"
	"campaign-query/internal/enrichment"
	"campaign-query/internal/query/orchestrator"
	"campaign-query/internal/query/parser"
	"campaign-query/internal/server"

	// Capability handlers, listed in registration order.
	"campaign-query/internal/handlers/candidates"
	"campaign-query/internal/handlers/canvass"
	"campaign-query/internal/handlers/comparison"
	"campaign-query/internal/handlers/county"
	"campaign-query/internal/handlers/districts"
	"campaign-query/internal/handlers/donors"
	"campaign-query/internal/handlers/elections"
	"campaign-query/internal/handlers/exports"
	"campaign-query/internal/handlers/general"
	"campaign-query/internal/handlers/graph"
	"campaign-query/internal/handlers/issues"
	"campaign-query/internal/handlers/navigation"
	"campaign-query/internal/handlers/segments"
	"campaign-query/internal/handlers/spatial"
	"campaign-query/internal/handlers/system"
	"campaign-query/internal/handlers/trends"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting query server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log = logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Data access: PostgreSQL when configured, static otherwise ---
	var data dataaccess.Service
	if cfg.Database.Postgres.Host != "" {
		pg, err := dataaccess.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres failed", zap.Error(err))
		}
		defer pg.Close()
		data = pg
		zapLog.Info("PostgreSQL connected successfully")
	} else {
		data = dataaccess.NewStatic()
		zapLog.Info("Using static data source")
	}

	// --- Redis cache for boundary reference data ---
	if cfg.Database.Redis.Address != "" {
		rdb := dataaccess.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		data = dataaccess.NewCached(data, rdb, time.Duration(cfg.Database.Redis.ReferenceTTL)*time.Second, log)
		zapLog.Info("Redis reference cache enabled")
	}

	// --- Parse/dispatch pipeline ---
	p := parser.New(log, parser.WithConfidenceFloor(cfg.Query.ConfidenceFloor))

	opts := []orchestrator.Option{
		orchestrator.WithObservability(obs),
		orchestrator.WithHandlerTimeout(time.Duration(cfg.Query.HandlerTimeout) * time.Millisecond),
	}
	if cfg.Enrichment.Enabled {
		opts = append(opts, orchestrator.WithEnrichment(enrichment.NewClient(cfg.Enrichment, log)))
		zapLog.Info("Relevance enrichment enabled")
	}
	orch := orchestrator.New(p, log, opts...)

	// Registration order is dispatch priority. The general handler goes
	// last so unknown always lands somewhere.
	orch.Register(navigation.NewHandler(log))
	orch.Register(system.NewHandler(log))
	orch.Register(exports.NewHandler(data, log))
	orch.Register(segments.NewHandler(data, log))
	orch.Register(districts.NewHandler(data, log))
	orch.Register(elections.NewHandler(data, log))
	orch.Register(donors.NewHandler(data, log))
	orch.Register(trends.NewHandler(data, log))
	orch.Register(candidates.NewHandler(data, log))
	orch.Register(issues.NewHandler(data, log))
	orch.Register(comparison.NewHandler(data, log))
	orch.Register(canvass.NewHandler(data, log))
	orch.Register(spatial.NewHandler(data, log))
	orch.Register(graph.NewHandler(log))
	orch.Register(county.NewHandler(data, log))
	orch.Register(general.NewHandler(log))

	zapLog.Info("All handlers registered", zap.Int("count", len(orch.Handlers())))

	// --- HTTP transport ---
	srv, err := server.New(cfg.Server, orch, log)
	if err != nil {
		zapLog.Fatal("server init failed", zap.Error(err))
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("http server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}

	zapLog.Info("Query server stopped gracefully")
}
