package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"lumi/internal/config"
	"lumi/internal/core/domain"
	"lumi/internal/core/ports"
	"lumi/internal/core/usecase"
	"lumi/internal/infrastructure/cache/redis"
	"lumi/internal/infrastructure/chunking"
	"lumi/internal/infrastructure/chunkstore"
	"lumi/internal/infrastructure/index/keyword"
	"lumi/internal/infrastructure/index/memory"
	"lumi/internal/infrastructure/index/qdrant"
	"lumi/internal/infrastructure/llm/ollama"
	"lumi/internal/infrastructure/parser"
	"lumi/internal/infrastructure/queue/nats"
	"lumi/internal/infrastructure/repository/postgres"
	"lumi/internal/infrastructure/rerank/crossencoder"
	"lumi/internal/infrastructure/resilience"
	"lumi/internal/infrastructure/storage/localfs"
	"lumi/internal/infrastructure/transcript/youtube"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue   ports.MessageQueue
	Sources ports.SourceReader

	IngestUC      ports.SourceIngestor
	ProcessUC     ports.SourceProcessor
	RetrieveUC    ports.Retriever
	AskUC         ports.AskService
	CollectionsUC ports.CollectionService

	RetrievalDefaults domain.RetrievalConfig

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewSourceRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel).WithExecutor(executor)
	generator := ollama.NewGenerator(ollamaClient)

	var embedder ports.EmbeddingProvider = ollama.NewEmbedder(ollamaClient)
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		embedder = redis.NewEmbeddingCache(embedder, redisClient, "lumi:emb", 7*24*time.Hour, logger)
	}

	var dense ports.VectorIndex
	switch cfg.VectorBackend {
	case "qdrant":
		dense = qdrant.New(cfg.QdrantURL, cfg.QdrantPrefix)
	default:
		dense = memory.NewDenseIndex()
	}

	sparse := keyword.NewIndex()
	store := chunkstore.New()

	var scorer ports.RelevanceScorer
	if cfg.RerankerURL != "" {
		scorer = crossencoder.New(cfg.RerankerURL).WithExecutor(executor)
	}

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	sourceParser := parser.New(logger)
	transcripts := youtube.New("", cfg.TranscriptLanguage)

	defaults := domain.RetrievalConfig{
		TopK:        cfg.RetrievalTopK,
		DenseWeight: cfg.RetrievalDenseWeight,
		Candidates:  cfg.RetrievalCandidates,
		Fusion:      domain.FusionStrategy(cfg.RetrievalFusion),
		RRFK:        cfg.RetrievalRRFK,
		RerankTopN:  cfg.RetrievalRerankTopN,
	}

	ingestUC := usecase.NewIngestSourceUseCase(repo, storage, queue, store)
	processUC := usecase.NewProcessSourceUseCase(repo, storage, sourceParser, transcripts, chunker, embedder, store, dense, sparse)
	retrieveUC := usecase.NewRetrieveUseCase(embedder, dense, sparse, scorer, store, defaults)
	askUC := usecase.NewAskUseCase(retrieveUC, generator)
	collectionsUC := usecase.NewCollectionUseCase(store, dense, sparse, repo)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:   queue,
		Sources: repo,

		IngestUC:      ingestUC,
		ProcessUC:     processUC,
		RetrieveUC:    retrieveUC,
		AskUC:         askUC,
		CollectionsUC: collectionsUC,

		RetrievalDefaults: defaults,

		closeFn: func() {
			queue.Close()
			if redisClient != nil {
				_ = redisClient.Close()
			}
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
