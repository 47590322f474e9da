package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"

	"docqa/config"
	"docqa/internal/adapter/cache"
	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/embedding"
	"docqa/internal/adapter/fs"
	"docqa/internal/adapter/index"
	"docqa/internal/adapter/llm"
	"docqa/internal/adapter/memstore"
	"docqa/internal/adapter/retriever"
	"docqa/internal/domain"
	"docqa/internal/port"
	"docqa/internal/usecase"
)

// app wires the full pipeline from configuration. Everything lives in
// memory for the process lifetime; each command builds a fresh app and
// ingests its document arguments before serving questions.
type app struct {
	cfg      *config.Config
	store    *memstore.Corpus
	sessions *memstore.Sessions
	loader   *fs.Loader
	ingestor *usecase.Ingestor
	asker    *usecase.Asker
}

func buildApp(cfg *config.Config) (*app, error) {
	store := memstore.NewCorpus()
	sessions := memstore.NewSessions(0)
	log := slog.Default()

	chk, err := buildChunker(cfg)
	if err != nil {
		return nil, err
	}

	backend, err := buildEmbeddingBackend(cfg)
	if err != nil {
		return nil, err
	}
	embedder := embedding.NewService(backend, cfg.Embedding.BatchSize, cfg.EmbedTimeout())

	idx, err := index.NewMemory(backend.Dimension())
	if err != nil {
		return nil, err
	}

	queryCache := cache.NewQueryCache(cfg.Retrieve.CacheSize, cfg.CacheTTL())
	var rtr port.Retriever = retriever.NewSemantic(embedder, idx, store)
	rtr = cache.NewCachedRetriever(rtr, queryCache)

	var reranker port.Reranker
	if cfg.Retrieve.MMREnabled {
		reranker = retriever.NewMMR(cfg.Retrieve.MMRLambda, cfg.Retrieve.DedupJaccard)
	}

	generator, err := buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	synth, err := usecase.NewSynthesizer(generator, store,
		cfg.Generation.ContextBudget, cfg.Generation.HistoryTurns)
	if err != nil {
		return nil, err
	}

	asker, err := usecase.NewAsker(rtr, reranker, synth, sessions,
		cfg.Retrieve.TopK, cfg.Retrieve.MinScore, log)
	if err != nil {
		return nil, err
	}

	ingestor := usecase.NewIngestor(store, idx, chk, embedder, log, queryCache.Invalidate)

	return &app{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		loader:   fs.NewLoader(cfg.Ingest.Includes, cfg.Ingest.Excludes),
		ingestor: ingestor,
		asker:    asker,
	}, nil
}

func buildChunker(cfg *config.Config) (port.Chunker, error) {
	switch cfg.Chunking.Strategy {
	case "sentence":
		return chunker.NewSentenceChunker(cfg.Chunking.Size, cfg.Chunking.OverlapSentences)
	default:
		return chunker.NewWindowChunker(cfg.Chunking.Size, cfg.Chunking.Overlap, cfg.Chunking.WordSafe)
	}
}

func buildEmbeddingBackend(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mock":
		return embedding.NewMockBackend(cfg.Embedding.Dimension), nil
	case "openai":
		return embedding.NewOpenAIBackend(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.Dimension)
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, cfg.Embedding.Provider)
	}
}

func buildLLM(cfg *config.Config) (port.LLM, error) {
	switch cfg.Generation.Provider {
	case "mock":
		return llm.NewMock(), nil
	case "openai":
		return llm.NewOpenAI(cfg.Generation.Model, cfg.Generation.APIKeyEnv, cfg.GenerateTimeout())
	default:
		return nil, fmt.Errorf("%w: unknown generation provider %q", domain.ErrConfiguration, cfg.Generation.Provider)
	}
}

// ingestPaths resolves the path arguments and uploads every matching
// document, with one progress bar across all passages of each file.
// Empty documents are skipped with a warning; other errors abort.
func (a *app) ingestPaths(ctx context.Context, args []string) error {
	paths, err := a.loader.Resolve(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no documents matched the given paths")
	}

	for _, path := range paths {
		name, text, err := a.loader.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}

		var bar *progressbar.ProgressBar
		var barMu sync.Mutex

		_, err = a.ingestor.Ingest(ctx, name, text, func(done, total int) {
			barMu.Lock()
			defer barMu.Unlock()
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionEnableColorCodes(true),
					progressbar.OptionShowBytes(false),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription(fmt.Sprintf("[cyan]Embedding %s[reset]", name)),
					progressbar.OptionOnCompletion(func() {
						fmt.Println()
					}),
				)
			}
			bar.Set(done)
		})
		if err != nil {
			if errors.Is(err, domain.ErrEmptyDocument) {
				fmt.Printf("Skipping %s: no text content\n", name)
				continue
			}
			return err
		}
	}

	stats := a.store.Stats()
	fmt.Printf("Ingested %d documents (%d passages)\n", stats.Documents, stats.Passages)
	return nil
}
