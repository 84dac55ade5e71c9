package llm

import (
	"github.com/kilimobot/kilimobot/internal/config"
)

// NewFromConfig builds the generation backend chain from configuration.
// Google is the primary backend when its key is present; OpenAI follows as
// the API-key fallback. A missing credential simply omits that backend, so
// the process starts with whichever backends are configured.
func NewFromConfig(cfg config.LLMConfig) (Client, error) {
	var backends []Client
	if cfg.GoogleAPIKey != "" {
		backends = append(backends, NewGoogleClient(cfg.GoogleAPIKey, cfg.GoogleModel))
	}
	if cfg.OpenAIAPIKey != "" {
		backends = append(backends, NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	return NewFallbackChain(backends...), nil
}
