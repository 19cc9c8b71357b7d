// Package config loads server configuration from defaults, an optional
// config file, a .env file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete server configuration.
type Config struct {
	Port    int           `mapstructure:"port"`
	Env     string        `mapstructure:"env"`
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Auth    AuthConfig    `mapstructure:"auth"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Chat    ChatConfig    `mapstructure:"chat"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Storage StorageConfig `mapstructure:"storage"`
	Search  SearchConfig  `mapstructure:"search"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

type StoreConfig struct {
	Backend   string `mapstructure:"backend"` // memory or firestore
	ProjectID string `mapstructure:"project_id"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	SkipAuth  bool          `mapstructure:"skip_auth"`
	// Firebase verifies Firebase ID tokens instead of locally issued JWTs.
	Firebase        bool   `mapstructure:"firebase"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
}

type ChatConfig struct {
	RateLimit      int           `mapstructure:"rate_limit"`
	RateWindow     time.Duration `mapstructure:"rate_window"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	ReapInterval   time.Duration `mapstructure:"reap_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	HistoryTurns   int           `mapstructure:"history_turns"`
	HistoryChars   int           `mapstructure:"history_chars"`
	RecentWindow   int           `mapstructure:"recent_window"`
	SimpleKeywords []string      `mapstructure:"simple_keywords"`
}

type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether reminder emails can be sent.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
}

type SearchConfig struct {
	AppID     string `mapstructure:"app_id"`
	APIKey    string `mapstructure:"api_key"`
	IndexName string `mapstructure:"index_name"`
}

// Enabled reports whether Algolia credentials are present.
func (c SearchConfig) Enabled() bool {
	return c.AppID != "" && c.APIKey != ""
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8111)
	v.SetDefault("env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.project_id", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.skip_auth", false)
	v.SetDefault("auth.firebase", false)
	v.SetDefault("auth.credentials_file", "")

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", "https://api.groq.com/openai/v1/chat/completions")
	v.SetDefault("llm.model", "llama-3.1-8b-instant")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 256)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.max_retries", 1)

	v.SetDefault("chat.rate_limit", 3)
	v.SetDefault("chat.rate_window", time.Minute)
	v.SetDefault("chat.cache_ttl", 5*time.Minute)
	v.SetDefault("chat.reap_interval", time.Minute)
	v.SetDefault("chat.request_timeout", 15*time.Second)
	v.SetDefault("chat.history_turns", 2)
	v.SetDefault("chat.history_chars", 500)
	v.SetDefault("chat.recent_window", 30)
	v.SetDefault("chat.simple_keywords", []string{})

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.timeout", 10*time.Second)

	v.SetDefault("storage.bucket", "")

	v.SetDefault("search.app_id", "")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.index_name", "transactions")

	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:3000",
		"http://localhost:5173",
	})
}

// legacyEnv maps the environment variable names used by existing
// deployments onto config keys.
var legacyEnv = map[string]string{
	"port":             "PORT",
	"auth.jwt_secret":  "JWT_SECRET",
	"llm.api_key":      "GROQ_API_KEY",
	"store.project_id": "GOOGLE_CLOUD_PROJECT",
	"auth.skip_auth":   "SKIP_AUTH",
}

// Load reads configuration. configFile may be empty, in which case a
// cashmate.{yaml,json,toml} in the working directory is used if present.
func Load(configFile string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cashmate")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	switch c.Store.Backend {
	case "memory":
	case "firestore":
		if c.Store.ProjectID == "" {
			errs = append(errs, errors.New("store.project_id is required for the firestore backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be memory or firestore, got %q", c.Store.Backend))
	}
	if !c.Auth.SkipAuth && !c.Auth.Firebase && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required unless auth.firebase or auth.skip_auth is set"))
	}
	if c.Auth.Firebase && c.Store.ProjectID == "" {
		errs = append(errs, errors.New("store.project_id is required for firebase auth"))
	}

	if c.Chat.RateLimit <= 0 {
		errs = append(errs, errors.New("chat.rate_limit must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"chat.rate_window":     c.Chat.RateWindow,
		"chat.cache_ttl":       c.Chat.CacheTTL,
		"chat.reap_interval":   c.Chat.ReapInterval,
		"chat.request_timeout": c.Chat.RequestTimeout,
		"llm.timeout":          c.LLM.Timeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Chat.HistoryTurns < 0 || c.Chat.HistoryChars <= 0 || c.Chat.RecentWindow <= 0 {
		errs = append(errs, errors.New("chat history and window sizes must be positive"))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, errors.New("llm.max_retries must not be negative"))
	}

	return errors.Join(errs...)
}

// IsLocal reports whether the server runs in a local development environment.
func (c *Config) IsLocal() bool {
	return c.Env == "" || c.Env == "local"
}
