package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lexdex/internal/config"
	"github.com/kailas-cloud/lexdex/internal/db"
	dbRedis "github.com/kailas-cloud/lexdex/internal/db/redis"
	"github.com/kailas-cloud/lexdex/internal/domain"
	logpkg "github.com/kailas-cloud/lexdex/internal/logger"
	"github.com/kailas-cloud/lexdex/internal/metrics"
	chunkrepo "github.com/kailas-cloud/lexdex/internal/repository/chunk"
	"github.com/kailas-cloud/lexdex/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/lexdex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/lexdex/internal/transport/openai"
	"github.com/kailas-cloud/lexdex/internal/usecase/chunker"
	embeddinguc "github.com/kailas-cloud/lexdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/lexdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/lexdex/internal/usecase/ingest"
	"github.com/kailas-cloud/lexdex/internal/usecase/scoring"
	searchuc "github.com/kailas-cloud/lexdex/internal/usecase/search"
	"github.com/kailas-cloud/lexdex/internal/version"
)

func main() {
	// Optional .env for local runs; real environment variables win.
	_ = godotenv.Load()

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lexdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()
	metrics.RegisterHTTPMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,

		DialTimeout: time.Duration(cfg.Database.DialTimeoutMS) * time.Millisecond,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Embedders are nil interfaces when no provider is configured; scoring then
	// falls back to lexical similarity and ingest stores chunks without vectors.
	var docEmbedder, queryEmbedder domain.Embedder
	var embeddingHealth healthuc.EmbeddingChecker
	if cfg.Embedding.Enabled() {
		docEmbedder, queryEmbedder = buildEmbedders(cfg, store, logger)
		embeddingHealth = newEmbeddingHealthChecker(docEmbedder)
		logger.Info("Embedders created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Warn("No embedding api key configured, semantic scoring uses the lexical fallback")
	}

	chunk, err := buildChunker(cfg.Chunker, logger)
	if err != nil {
		logger.Fatal("Failed to create chunker", zap.Error(err))
	}

	scorer, err := scoring.New(scoringConfig(cfg.Scoring), queryEmbedder, logger)
	if err != nil {
		logger.Fatal("Failed to create scorer", zap.Error(err))
	}
	if docEmbedder != nil {
		scorer.WithDocumentEmbedder(docEmbedder)
	}

	repo := chunkrepo.New(store, cfg.Storage.KeyPrefix)
	stats := searchuc.NewStatsCache()

	ingestSvc := ingestuc.New(chunk, docEmbedder, repo, stats, logger)
	searchSvc := searchuc.New(repo, scorer, stats, logger).
		WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	healthSvc := healthuc.New(store, embeddingHealth, logger)

	server := chiTransport.NewServer(ingestSvc, searchSvc, chunk, repo, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedders assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
// Both chains share the provider client and the cache; the instruction prefix is outermost
// so it is part of the cache key.
func buildEmbedders(cfg config.Config, store db.Store, logger *zap.Logger) (doc, query domain.Embedder) {
	ec := cfg.Embedding

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Logger:     logger,

		RequestsPerSecond: ec.RequestsPerSecond,
		Burst:             ec.Burst,
	})

	cached := embcache.New(base, store, embcache.Options{
		Prefix: cfg.Storage.KeyPrefix,
		Model:  ec.Model,
		TTL:    time.Duration(ec.CacheTTLHours) * time.Hour,
	}, metrics.EmbeddingCacheTotal, logger)

	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		cached, ec.Provider, ec.Model,
		embeddinguc.Options{
			Timeout:      time.Duration(ec.TimeoutMS) * time.Millisecond,
			MaxBatchSize: ec.MaxBatchSize,
		},
		logger,
	)

	return withInstruction(embedder, ec.DocumentInstruction), withInstruction(embedder, ec.QueryInstruction)
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

func buildChunker(cc config.ChunkerConfig, logger *zap.Logger) (*chunker.Chunker, error) {
	c, err := chunker.New(chunker.Config{
		MaxChunkSize:        cc.MaxChunkSize,
		MinChunkSize:        cc.MinChunkSize,
		OverlapSize:         cc.OverlapSize,
		CalculateImportance: cc.CalculateImportance == nil || *cc.CalculateImportance,
	}, logger)
	if err != nil {
		return nil, err
	}
	if cc.RulesFile == "" {
		return c, nil
	}

	f, err := os.Open(filepath.Clean(cc.RulesFile))
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()

	rules, err := chunker.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("load rules %s: %w", cc.RulesFile, err)
	}
	logger.Info("Loaded boundary rules", zap.String("file", cc.RulesFile), zap.Int("rules", len(rules)))
	return c.WithRules(rules), nil
}

// scoringConfig overlays explicitly configured values onto the scorer defaults.
func scoringConfig(sc config.ScoringConfig) scoring.Config {
	out := scoring.DefaultConfig()

	overlay := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	overlay(&out.Weights.Semantic, sc.Weights.Semantic)
	overlay(&out.Weights.Keyword, sc.Weights.Keyword)
	overlay(&out.Weights.Metadata, sc.Weights.Metadata)
	overlay(&out.Weights.Recency, sc.Weights.Recency)
	overlay(&out.Weights.Authority, sc.Weights.Authority)
	overlay(&out.B, sc.BM25B)
	overlay(&out.MMRLambda, sc.MMRLambda)

	if sc.BM25K1 > 0 {
		out.K1 = sc.BM25K1
	}
	if sc.BM25Normalization > 0 {
		out.BM25Normalization = sc.BM25Normalization
	}
	if sc.MMRMaxResults > 0 {
		out.MMRMaxResults = sc.MMRMaxResults
	}
	if sc.AllowOnDemandEmbedding != nil {
		out.AllowOnDemandEmbedding = *sc.AllowOnDemandEmbedding
	}
	for k, v := range sc.AuthorityWeights {
		out.AuthorityWeights[k] = v
	}
	for k, v := range sc.AreaWeights {
		out.AreaWeights[k] = v
	}
	return out
}
