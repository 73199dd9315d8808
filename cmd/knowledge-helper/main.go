package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/adapters/embedding"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/adapters/filewatcher"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/adapters/llm"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/adapters/loader"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/adapters/vectordb"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/chunker"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/config"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/ports"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/usecases"
	httpserver "github.com/Musaddiq174/ai-knowledge-helper/internal/infrastructure/http"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath     string
		corpusPath  string
		process     bool
		rebuild     bool
		interactive bool
		evaluate    bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to YAML config file")
	flag.StringVar(&corpusPath, "corpus", "documents", "directory with documents to index")
	flag.BoolVar(&process, "process", false, "ingest the corpus before serving")
	flag.BoolVar(&rebuild, "rebuild", false, "rebuild the index from scratch (implies -process)")
	flag.BoolVar(&interactive, "interactive", false, "run the terminal UI instead of the HTTP server")
	flag.BoolVar(&evaluate, "evaluate", false, "score answers in interactive mode")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			log.Fatalf("[ERROR] loading config: %v", err)
		}
	}

	embedder := buildEmbedder(cfg)
	index := buildIndex(cfg)
	defer index.Close()

	chk, err := chunker.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	if err != nil {
		log.Fatalf("[ERROR] building chunker: %v", err)
	}

	docLoader := loader.NewMultiLoader()
	ingest := usecases.NewIngestUseCase(docLoader, chk, embedder, index)

	retriever, err := usecases.NewRetrieveUseCase(embedder, index, cfg.Retrieval.TopK, cfg.Retrieval.MinSimilarity)
	if err != nil {
		log.Fatalf("[ERROR] building retriever: %v", err)
	}

	fallback := llm.NewExtractiveBackend()
	answerer := usecases.NewAnswerUseCase(
		buildGenerator(cfg),
		fallback,
		cfg.Generation.FallbackPenalty,
		time.Duration(cfg.Generation.TimeoutSecs)*time.Second,
	)

	evaluator, err := usecases.NewEvaluateUseCase(embedder, cfg.Evaluation.RelevanceWeight, cfg.Evaluation.CoverageWeight)
	if err != nil {
		log.Fatalf("[ERROR] building evaluator: %v", err)
	}

	ask := usecases.NewAskUseCase(retriever, answerer, evaluator)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if process || rebuild {
		report, err := ingest.Process(ctx, corpusPath, rebuild)
		if err != nil {
			log.Fatalf("[ERROR] processing corpus: %v", err)
		}
		for _, f := range report.Failures {
			log.Printf("[WARN] failed to index %s: %s", f.Path, f.Reason)
		}
	}

	if cfg.Watch {
		go watchCorpus(ctx, ingest, docLoader, corpusPath)
	}

	if interactive {
		summary := fmt.Sprintf("corpus: %s · index: %s · embeddings: %s", corpusPath, cfg.Index.Type, cfg.Embedding.Type)
		m := tui.New(ask, summary, evaluate)
		if _, err := tea.NewProgram(m).Run(); err != nil {
			log.Fatal(err)
		}
		return
	}

	server := httpserver.NewServer(ask, ingest, index, corpusPath, cfg.Server.Addr)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("[ERROR] server: %v", err)
	}
}

func buildEmbedder(cfg *config.Config) ports.EmbeddingService {
	e := cfg.Embedding
	switch e.Type {
	case "local", "":
		return embedding.NewService(func() (embedding.Backend, error) {
			m, err := embedding.NewLocalModel(e.Dimension)
			if err != nil {
				return nil, err
			}
			return m, nil
		})
	case "ollama":
		return embedding.NewService(func() (embedding.Backend, error) {
			return embedding.NewOllamaBackend(e.BaseURL, e.Model, time.Duration(e.TimeoutSecs)*time.Second), nil
		})
	case "openai":
		apiKey := os.Getenv(e.APIKeyEnv)
		return embedding.NewService(func() (embedding.Backend, error) {
			b, err := embedding.NewOpenAIBackend(apiKey, e.BaseURL, e.Model)
			if err != nil {
				return nil, err
			}
			return b, nil
		})
	default:
		log.Fatalf("[ERROR] unknown embedding type %q", e.Type)
		return nil
	}
}

func buildIndex(cfg *config.Config) ports.VectorIndex {
	path := filepath.Join(cfg.DataDir, cfg.Index.Path)
	switch cfg.Index.Type {
	case "sqlite", "":
		index, err := vectordb.NewSQLiteIndex(path)
		if err != nil {
			log.Fatalf("[ERROR] opening sqlite index: %v", err)
		}
		return index
	case "chromem":
		index, err := vectordb.NewChromemIndex(path)
		if err != nil {
			log.Fatalf("[ERROR] opening chromem index: %v", err)
		}
		return index
	case "memory":
		return vectordb.NewMemoryIndex()
	default:
		log.Fatalf("[ERROR] unknown index type %q", cfg.Index.Type)
		return nil
	}
}

// buildGenerator returns the primary answer backend, or nil when generation
// is disabled and the extractive fallback answers everything.
func buildGenerator(cfg *config.Config) ports.AnswerBackend {
	g := cfg.Generation
	if !g.Enabled {
		return nil
	}
	switch g.Type {
	case "ollama":
		return llm.NewOllamaBackend(g.BaseURL, g.Model)
	case "openai":
		backend, err := llm.NewOpenAIBackend(os.Getenv(g.APIKeyEnv), g.BaseURL, g.Model)
		if err != nil {
			log.Fatalf("[ERROR] building openai backend: %v", err)
		}
		return backend
	default:
		log.Fatalf("[ERROR] unknown generation type %q", g.Type)
		return nil
	}
}

// watchCorpus keeps the index in sync with file changes under corpusPath.
func watchCorpus(ctx context.Context, ingest *usecases.IngestUseCase, docLoader ports.DocumentLoader, corpusPath string) {
	watcher, err := filewatcher.NewFSNotifyWatcher(docLoader.SupportedExtensions())
	if err != nil {
		log.Printf("[ERROR] starting file watcher: %v", err)
		return
	}
	defer watcher.Stop()

	events, err := watcher.Watch(ctx, corpusPath)
	if err != nil {
		log.Printf("[ERROR] watching %s: %v", corpusPath, err)
		return
	}
	log.Printf("[INFO] watching %s for changes", corpusPath)

	for event := range events {
		switch event.Operation {
		case ports.FileCreated, ports.FileModified:
			if err := ingest.IngestFile(ctx, event.Path); err != nil {
				log.Printf("[WARN] reindexing %s: %v", event.Path, err)
			} else {
				log.Printf("[INFO] reindexed %s", event.Path)
			}
		case ports.FileDeleted:
			if err := ingest.RemoveFile(ctx, event.Path); err != nil {
				log.Printf("[WARN] removing %s from index: %v", event.Path, err)
			} else {
				log.Printf("[INFO] removed %s from index", event.Path)
			}
		}
	}
}
