package config

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		DataDir:         "data",
		DefaultLanguage: LanguageEnglish,
		HistoryLimit:    6,
		LLM: LLMConfig{
			GoogleModel: "gemini-2.0-flash",
			OpenAIModel: "gpt-4o-mini",
			Temperature: 0.7,
		},
		Cache: CacheConfig{
			TTLMinutes: 60,
			Capacity:   1000,
		},
		Knowledge: KnowledgeConfig{
			EmbeddingModel: "text-embedding-3-small",
			SeedDir:        "knowledge",
			Include:        []string{"**/*.md", "**/*.txt"},
			MaxPassages:    5,
		},
		Alerts: AlertConfig{
			WeatherCron: "0 6 * * *",
			MarketCron:  "0 7 * * 1",
		},
	}
}
