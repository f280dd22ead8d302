package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/truesight/internal/logger"
)

// Provider names.
const (
	ProviderGroq     = "groq"
	ProviderDeepSeek = "deepseek"
)

// Database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		IdleTimeout  time.Duration `yaml:"idle_timeout"`
		CORS         struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI AI `yaml:"ai"`

	Auth struct {
		// tenant -> api key; empty disables auth
		APIKeys map[string]string `yaml:"api_keys"`
	} `yaml:"auth"`

	RateLimit struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"ratelimit"`

	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logger"`
}

type AI struct {
	DefaultProvider   string        `yaml:"default_provider"`
	Groq              Provider      `yaml:"groq"`
	DeepSeek          Provider      `yaml:"deepseek"`
	Temperature       float32       `yaml:"temperature"`
	MaxTokens         int           `yaml:"max_tokens"`
	Timeout           time.Duration `yaml:"timeout"`
	StrictConsistency bool          `yaml:"strict_consistency"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

type Provider struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Usable reports whether the key looks real: set and not a your_... placeholder.
func (p Provider) Usable() bool {
	key := strings.TrimSpace(p.APIKey)
	return key != "" && !strings.Contains(key, "your_")
}

// Named is a provider with its name attached.
type Named struct {
	Name string
	Provider
}

// Providers returns the usable providers in call order: the default
// provider first, the other one as failover.
func (a AI) Providers() []Named {
	order := []Named{{ProviderGroq, a.Groq}, {ProviderDeepSeek, a.DeepSeek}}
	if a.DefaultProvider == ProviderDeepSeek {
		order[0], order[1] = order[1], order[0]
	}
	var out []Named
	for _, p := range order {
		if p.Usable() {
			out = append(out, p)
		}
	}
	return out
}

// Default returns a config usable without a file: heuristic-only analysis
// with an in-memory store.
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.IdleTimeout = 60 * time.Second

	c.Database.Driver = DriverMemory
	c.Database.SSLMode = "disable"

	c.AI.DefaultProvider = ProviderGroq
	c.AI.Groq = Provider{Model: "llama-3.1-70b-versatile", BaseURL: "https://api.groq.com/openai/v1"}
	c.AI.DeepSeek = Provider{Model: "deepseek-chat", BaseURL: "https://api.deepseek.com/v1"}
	c.AI.Temperature = 0.1
	c.AI.MaxTokens = 1000
	c.AI.Timeout = 30 * time.Second
	c.AI.CacheTTL = 15 * time.Minute

	c.RateLimit.RequestsPerSecond = 10
	c.RateLimit.Burst = 20

	c.Logger.Level = "info"
	c.Logger.Format = "console"
	return &c
}

// Load baca file config.yaml di atas default, lalu override dari env.
// File yang tidak ada bukan error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns CONFIG_PATH or config.yaml.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.AI.Groq.APIKey, "GROQ_API_KEY")
	set(&c.AI.Groq.Model, "GROQ_MODEL")
	set(&c.AI.Groq.BaseURL, "GROQ_BASE_URL")
	set(&c.AI.DeepSeek.APIKey, "DEEPSEEK_API_KEY")
	set(&c.AI.DeepSeek.Model, "DEEPSEEK_MODEL")
	set(&c.AI.DeepSeek.BaseURL, "DEEPSEEK_BASE_URL")
	set(&c.AI.DefaultProvider, "DEFAULT_AI_PROVIDER")
	set(&c.Database.Password, "DB_PASSWORD")
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver))
	}
	switch c.AI.DefaultProvider {
	case ProviderGroq, ProviderDeepSeek:
	default:
		errs = append(errs, fmt.Errorf("ai.default_provider: unknown provider %q", c.AI.DefaultProvider))
	}
	if !logger.ValidFormat(c.Logger.Format) {
		errs = append(errs, fmt.Errorf("logger.format: unknown format %q", c.Logger.Format))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d out of range", c.Server.Port))
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("ratelimit.requests_per_second must be positive"))
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		errs = append(errs, errors.New("minio: endpoint and bucketName are required when enabled"))
	}
	return errors.Join(errs...)
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq key=value connection string.
func (c *Config) PostgresDSN() string {
	sslmode := c.Database.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		sslmode,
	)
}
