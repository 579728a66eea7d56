package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID,required"`

	// LLM settings. LLMProvider is either a provider name or "auto";
	// "auto" walks ProviderOrder and falls through on failure.
	LLMProvider      string   `env:"LLM_PROVIDER" envDefault:"auto"`
	ProviderOrder    []string `env:"LLM_PROVIDER_ORDER" envSeparator:"," envDefault:"openai,anthropic,yandex"`
	OpenAIAPIKey     string   `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string   `env:"OPENAI_BASE_URL"`
	OpenAIModel      string   `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AnthropicAPIKey  string   `env:"ANTHROPIC_API_KEY"`
	AnthropicModel   string   `env:"ANTHROPIC_MODEL" envDefault:"claude-3-haiku-20240307"`
	YandexOAuthToken string   `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string   `env:"YANDEX_FOLDER_ID"`

	// Storage
	RecordsFilePath   string `env:"RECORDS_FILE_PATH" envDefault:"publications/news_database.json"`
	WatermarkFilePath string `env:"WATERMARK_FILE_PATH" envDefault:"data/last_check.json"`
	PublicationsDir   string `env:"PUBLICATIONS_DIR" envDefault:"publications"`

	// Pipeline
	FetchLimit     int           `env:"FETCH_LIMIT" envDefault:"200"`
	ExtractTimeout time.Duration `env:"EXTRACT_TIMEOUT" envDefault:"10s"`
	EnrichTimeout  time.Duration `env:"ENRICH_TIMEOUT" envDefault:"30s"`

	// Status reports
	StatusCronSpec string `env:"STATUS_CRON_SPEC" envDefault:"@hourly"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
