package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every storefront environment variable.
const EnvPrefix = "STOREFRONT"

// Cart storage backends.
const (
	CartBackendNone  = "none"
	CartBackendFile  = "file"
	CartBackendRedis = "redis"
)

// Languages the backend serves translated catalog content for.
var SupportedLanguages = []string{"en", "es", "ru"}

type Config struct {
	App   AppConfig
	API   APIConfig
	Cart  CartConfig
	Redis RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

type APIConfig struct {
	BaseURL  string        `envconfig:"STOREFRONT_API_BASE_URL" required:"true"`
	Language string        `envconfig:"STOREFRONT_LANGUAGE" default:"ru"`
	Timeout  time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"15s"`
}

func (a APIConfig) validate() error {
	if _, err := url.ParseRequestURI(a.BaseURL); err != nil {
		return fmt.Errorf("invalid api base url %q: %w", a.BaseURL, err)
	}
	if !LanguageSupported(a.Language) {
		return fmt.Errorf("unsupported language %q (supported: %s)",
			a.Language, strings.Join(SupportedLanguages, ", "))
	}
	return nil
}

type CartConfig struct {
	Backend  string `envconfig:"STOREFRONT_CART_BACKEND" default:"file"`
	FilePath string `envconfig:"STOREFRONT_CART_FILE" default:".storefront/cart.json"`
	SlotKey  string `envconfig:"STOREFRONT_CART_SLOT_KEY" default:"prianik-cart"`
}

func (c CartConfig) validate() error {
	switch c.Backend {
	case CartBackendNone, CartBackendFile, CartBackendRedis:
	default:
		return fmt.Errorf("unknown cart backend %q", c.Backend)
	}
	if c.Backend == CartBackendFile && strings.TrimSpace(c.FilePath) == "" {
		return fmt.Errorf("cart file path is required for the file backend")
	}
	if strings.TrimSpace(c.SlotKey) == "" {
		return fmt.Errorf("cart slot key is required")
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// LanguageSupported reports whether the backend can serve the locale.
func LanguageSupported(lang string) bool {
	for _, supported := range SupportedLanguages {
		if supported == lang {
			return true
		}
	}
	return false
}
