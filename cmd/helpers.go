package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilimobot/kilimobot/internal/cache"
	"github.com/kilimobot/kilimobot/internal/config"
	"github.com/kilimobot/kilimobot/internal/embeddings"
	"github.com/kilimobot/kilimobot/internal/knowledge"
	"github.com/kilimobot/kilimobot/internal/vectordb"
)

// loadConfig loads and validates the config with a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `kilimobot init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createEmbedder builds the OpenAI embedder used for passage search. The
// API key may come from config or the environment.
func createEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	apiKey := cfg.LLM.OpenAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("an OpenAI API key is required for embeddings")
	}
	return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.Knowledge.EmbeddingModel)), nil
}

// createRetriever builds the knowledge retriever, loading any previously
// seeded passages. With vector search disabled (or no embedder available)
// retrieval serves local structured data alone.
func createRetriever(ctx context.Context, cfg *config.Config) *knowledge.Retriever {
	if cfg.Knowledge.DisableVectorSearch {
		return knowledge.NewRetriever(nil, cfg.Knowledge.MaxPassages, true)
	}

	embedder, err := createEmbedder(cfg)
	if err != nil {
		log.Printf("vector search unavailable (%v), using local knowledge only", err)
		return knowledge.NewRetriever(nil, cfg.Knowledge.MaxPassages, true)
	}

	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		log.Printf("creating vector store failed (%v), using local knowledge only", err)
		return knowledge.NewRetriever(nil, cfg.Knowledge.MaxPassages, true)
	}

	vectorDir := filepath.Join(cfg.DataDir, "vectordb")
	if err := store.Load(ctx, vectorDir); err != nil {
		log.Printf("no seeded passages at %s (%v); run `kilimobot seed` to add some", vectorDir, err)
	}

	return knowledge.NewRetriever(store, cfg.Knowledge.MaxPassages, false)
}

// createCache builds the response cache: Redis-backed with a local mirror
// when an address is configured, local-only otherwise.
func createCache(cfg *config.Config) cache.Cache {
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute

	if cfg.Cache.RedisAddr == "" {
		return cache.NewMemory(ttl, cfg.Cache.Capacity)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	r := cache.NewRedis(client, ttl, cfg.Cache.Capacity)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		log.Printf("redis at %s unreachable (%v); cache will fall back locally until it recovers", cfg.Cache.RedisAddr, err)
	}
	return r
}
