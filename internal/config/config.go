package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	GeoapifyAPIKey string `env:"GEOAPIFY_API_KEY"`
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`

	Provider         string `env:"GENERATION_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-pro"`
	GeminiBaseURL    string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiAPIVersion string `env:"GEMINI_API_VERSION" envDefault:"v1beta"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenAIModel      string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	GeoapifyBaseURL  string `env:"GEOAPIFY_BASE_URL" envDefault:"https://api.geoapify.com"`

	EnableChat  bool   `env:"ENABLE_CHAT" envDefault:"true"`
	ProfileFile string `env:"PROFILE_FILE"`

	WebAddr   string `env:"WEB_ADDR" envDefault:":8080"`
	PageTitle string `env:"PAGE_TITLE" envDefault:"MedAssist AI"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Debug     bool   `env:"DEBUG" envDefault:"false"`

	PreferIPv4     bool          `env:"PREFER_IPV4" envDefault:"true"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"180"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT_SECONDS" envDefault:"180"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	MaxConcurrent  int           `env:"MAX_CONCURRENT" envDefault:"4"`
	MaxUploadMB    int           `env:"MAX_UPLOAD_MB" envDefault:"20"`
	UpdatesTimeout time.Duration `env:"TELEGRAM_UPDATES_TIMEOUT" envDefault:"30s"`

	Profile Profile
}

type LoadOptions struct {
	RequireTelegram bool
}

// Load reads the environment and the optional profile file. Missing
// secrets are reported together in a single error.
func Load(opts LoadOptions) (Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): parseDuration,
		},
	}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.GeoapifyAPIKey = strings.TrimSpace(cfg.GeoapifyAPIKey)
	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)

	var missing []string
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		return Config{}, fmt.Errorf("unknown GENERATION_PROVIDER %q", cfg.Provider)
	}
	if cfg.GeoapifyAPIKey == "" {
		missing = append(missing, "GEOAPIFY_API_KEY")
	}
	if opts.RequireTelegram && cfg.TelegramToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if len(missing) > 0 {
		return Config{}, errors.New(strings.Join(missing, ", ") + " required")
	}

	profile, err := LoadProfile(cfg.ProfileFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Profile = profile

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 1
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 180 * time.Second
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 180 * time.Second
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 2 * time.Hour
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 20
	}
	if c.UpdatesTimeout <= 0 {
		c.UpdatesTimeout = 30 * time.Second
	}
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// parseDuration accepts a bare integer as seconds, matching the *_SECONDS
// variables, and any time.ParseDuration string otherwise.
func parseDuration(value string) (interface{}, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q", value)
	}
	return d, nil
}
