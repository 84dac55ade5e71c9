package config

// Language is a supported conversation language.
type Language string

const (
	// LanguageEnglish is the pivot language: classification and generation
	// always run in English regardless of the user's preference.
	LanguageEnglish Language = "en"
	// LanguageSwahili is the secondary language offered to users.
	LanguageSwahili Language = "sw"
)

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
)

// LLMConfig selects the generation backends. Google is the primary backend
// when configured; OpenAI acts as the API-key fallback. Either may be left
// unconfigured as long as at least one is present.
type LLMConfig struct {
	GoogleAPIKey string  `yaml:"google_api_key" koanf:"google_api_key"`
	GoogleModel  string  `yaml:"google_model" koanf:"google_model"`
	OpenAIAPIKey string  `yaml:"openai_api_key" koanf:"openai_api_key"`
	OpenAIModel  string  `yaml:"openai_model" koanf:"openai_model"`
	Temperature  float64 `yaml:"temperature" koanf:"temperature"`
}

// CacheConfig controls the response cache tiers. If RedisAddr is empty the
// cache runs local-only.
type CacheConfig struct {
	RedisAddr     string `yaml:"redis_addr" koanf:"redis_addr"`
	RedisPassword string `yaml:"redis_password" koanf:"redis_password"`
	RedisDB       int    `yaml:"redis_db" koanf:"redis_db"`
	TTLMinutes    int    `yaml:"ttl_minutes" koanf:"ttl_minutes"`
	Capacity      int    `yaml:"capacity" koanf:"capacity"`
}

// KnowledgeConfig controls retrieval.
type KnowledgeConfig struct {
	// DisableVectorSearch turns off the external similarity search entirely;
	// retrieval then serves local structured data alone.
	DisableVectorSearch bool     `yaml:"disable_vector_search" koanf:"disable_vector_search"`
	EmbeddingModel      string   `yaml:"embedding_model" koanf:"embedding_model"`
	SeedDir             string   `yaml:"seed_dir" koanf:"seed_dir"`
	Include             []string `yaml:"include" koanf:"include"`
	MaxPassages         int      `yaml:"max_passages" koanf:"max_passages"`
}

// ChannelConfig holds per-transport credentials. A channel whose credentials
// are absent still lets the process start; its sends fail gracefully instead.
type ChannelConfig struct {
	WhatsAppToken   string `yaml:"whatsapp_token" koanf:"whatsapp_token"`
	WhatsAppPhoneID string `yaml:"whatsapp_phone_id" koanf:"whatsapp_phone_id"`
	SMSAPIKey       string `yaml:"sms_api_key" koanf:"sms_api_key"`
	SMSSenderID     string `yaml:"sms_sender_id" koanf:"sms_sender_id"`
	USSDServiceCode string `yaml:"ussd_service_code" koanf:"ussd_service_code"`
	VoiceEnabled    bool   `yaml:"voice_enabled" koanf:"voice_enabled"`
}

// AlertConfig controls the proactive alert scheduler.
type AlertConfig struct {
	Enabled     bool   `yaml:"enabled" koanf:"enabled"`
	WeatherCron string `yaml:"weather_cron" koanf:"weather_cron"`
	MarketCron  string `yaml:"market_cron" koanf:"market_cron"`
}

// Config is the top-level kilimobot configuration, corresponding to
// .kilimobot.yml with KILIMOBOT_* environment overrides.
type Config struct {
	Port            int             `yaml:"port" koanf:"port"`
	DataDir         string          `yaml:"data_dir" koanf:"data_dir"`
	DefaultLanguage Language        `yaml:"default_language" koanf:"default_language"`
	HistoryLimit    int             `yaml:"history_limit" koanf:"history_limit"`
	LLM             LLMConfig       `yaml:"llm" koanf:"llm"`
	Cache           CacheConfig     `yaml:"cache" koanf:"cache"`
	Knowledge       KnowledgeConfig `yaml:"knowledge" koanf:"knowledge"`
	Channels        ChannelConfig   `yaml:"channels" koanf:"channels"`
	Alerts          AlertConfig     `yaml:"alerts" koanf:"alerts"`
}
