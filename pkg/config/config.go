package config

import (
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env          string `env:"APP_ENV" env-default:"development"`
		Port         int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl    string `env:"SENTRY_URL"`
		ProviderMode string `env:"PROVIDER_MODE" env-default:"auto"`
		StrictAuth   bool   `env:"PROVIDER_STRICT_AUTH" env-default:"false"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT"`
		Host    string `env:"POSTGRES_HOST"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Puter struct {
		Token    string `env:"PUTER_TOKEN"`
		Endpoint string `env:"PUTER_ENDPOINT" env-default:"https://api.puter.com"`
	}
	Gemini struct {
		APIKey   string `env:"GEMINI_API_KEY"`
		Endpoint string `env:"GEMINI_ENDPOINT" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	}
	OpenRouter struct {
		APIKey  string `env:"OPENROUTER_API_KEY"`
		BaseURL string `env:"OPENROUTER_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
	}
	Telegram struct {
		Token  string `env:"TELEGRAM_TOKEN"`
		ChatID int64  `env:"TELEGRAM_CHAT_ID"`
	}
	History struct {
		RetentionDays int `env:"HISTORY_RETENTION_DAYS" env-default:"30"`
	}
	RateLimit struct {
		GeneratePerMinute int `env:"RATE_LIMIT_GENERATE_PER_MINUTE" env-default:"3"`
		GenerateBurst     int `env:"RATE_LIMIT_GENERATE_BURST" env-default:"3"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}
