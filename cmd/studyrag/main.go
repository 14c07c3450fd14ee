package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"studyrag/internal/ai"
	"studyrag/internal/composer"
	"studyrag/internal/config"
	"studyrag/internal/embedcache"
	"studyrag/internal/extract"
	"studyrag/internal/filestore"
	"studyrag/internal/handler"
	"studyrag/internal/job"
	"studyrag/internal/middleware"
	"studyrag/internal/repo"
	"studyrag/internal/retriever"
	"studyrag/internal/schedule"
	"studyrag/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "studyrag",
		Short: "studyrag document question answering server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run studyrag server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildEmbedder(cfg *config.Config, cacheRepo *repo.EmbeddingCacheRepo) (ai.IEmbedder, error) {
	embedArgs := cfg.AI.EmbedData
	if embedArgs == nil {
		embedArgs = map[string]interface{}{}
	}
	provider, err := ai.NewEmbedProvider(cfg.AI.EmbedProvider, embedArgs)
	if err != nil {
		return nil, fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, cfg.AI.EmbedModel, cfg.AI.EmbedDim, cfg.AI.MaxInputChars)
	if cfg.AI.EmbedCache.UseDB && cacheRepo != nil {
		embedder = embedcache.WrapDBCacheToEmbedder(embedder, cacheRepo)
	}
	if cfg.AI.EmbedCache.LruSize > 0 {
		ttl := time.Duration(cfg.AI.EmbedCache.LruTTLMinutes) * time.Minute
		embedder = embedcache.WrapLruCacheToEmbedder(embedder, cfg.AI.EmbedCache.LruSize, ttl)
	}
	return embedder, nil
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("embed_provider", cfg.AI.EmbedProvider),
		zap.String("completion_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	docRepo := repo.NewDocumentRepo(db)
	chunkRepo := repo.NewChunkRepo(db)
	cacheRepo := repo.NewEmbeddingCacheRepo(db)

	embedder, err := buildEmbedder(cfg, cacheRepo)
	if err != nil {
		return err
	}
	completeProvider, err := ai.NewCompleteProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init completion provider: %w", err)
	}
	completer := ai.NewCompleter(completeProvider, cfg.AI.Model)

	var store filestore.Store
	if cfg.FileStore.Type != "" {
		store, err = filestore.New(cfg.FileStore)
		if err != nil {
			return fmt.Errorf("init file store: %w", err)
		}
	}

	extractors := extract.NewRegistry(
		extract.NewPDFExtractor(),
		extract.NewMarkdownExtractor(),
		extract.NewPlainExtractor(),
	)

	answerComposer := composer.New(completer, composer.Options{
		Temperature:     cfg.RAG.Temperature,
		MaxOutputTokens: cfg.RAG.MaxOutputTokens,
		Timeout:         time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
	})

	ingestService := service.NewIngestService(extractors, embedder, docRepo, chunkRepo, store, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	queryService := service.NewQueryService(embedder, retriever.NewBruteForce(chunkRepo), answerComposer, cfg.RAG.DefaultTopK)
	documentService := service.NewDocumentService(docRepo)

	deps := handler.RouterDeps{
		Ingest:         handler.NewIngestHandler(ingestService, cfg.MaxUploadSize),
		Query:          handler.NewQueryHandler(queryService),
		Documents:      handler.NewDocumentHandler(documentService),
		DB:             db,
		QueryRateLimit: time.Duration(cfg.QueryRateLimitMs) * time.Millisecond,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Jobs.CacheCleanupCron != "" {
		cleanup := job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.Jobs.CacheTTLDays)
		if err := scheduler.AddJob(cleanup, cfg.Jobs.CacheCleanupCron); err != nil {
			return fmt.Errorf("schedule cache cleanup: %w", err)
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
