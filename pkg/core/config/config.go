// Package config loads runtime settings: .env first, then config/app.yaml,
// then environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"property_report/pkg/core/agent"
	"property_report/pkg/core/llm"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "config/app.yaml"

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     agent.Config  `yaml:"llm"`
	Report  ReportConfig  `yaml:"report"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	// ResourcesDir, when set, loads prompts and schemas from disk instead of
	// the embedded copies.
	ResourcesDir string `yaml:"resources_dir"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	RateLimit       float64       `yaml:"rate_limit"` // generate requests per second per client
	RateBurst       int           `yaml:"rate_burst"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type ReportConfig struct {
	Strict              bool          `yaml:"strict"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
	Tolerance           float64       `yaml:"tolerance"`
	HostedPromptID      string        `yaml:"hosted_prompt_id"`
	HostedPromptVersion string        `yaml:"hosted_prompt_version"`
}

type StorageConfig struct {
	DatabaseURL string `yaml:"database_url"`
	ArchiveDir  string `yaml:"archive_dir"`
	RedisAddr   string `yaml:"redis_addr"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Providers the manager knows how to build.
var knownProviders = []string{"openai", "gemini", "deepseek", agent.FallbackProvider}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			CORSOrigins:     []string{"*"},
			RateLimit:       0.2,
			RateBurst:       3,
			RequestTimeout:  180 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		LLM: agent.Config{
			Providers: map[string]llm.ProviderConfig{
				"openai":   {APIKeyEnv: "OPENAI_API_KEY", Model: "gpt-4.1"},
				"gemini":   {APIKeyEnv: "GEMINI_API_KEY", Model: "gemini-2.5-flash"},
				"deepseek": {APIKeyEnv: "DEEPSEEK_API_KEY", Model: "deepseek-chat"},
			},
		},
		Report: ReportConfig{
			CacheTTL:  24 * time.Hour,
			Tolerance: 0.01,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads .env (if present), the YAML file at path (if present) and the
// environment, then validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}
	cfg, err := LoadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	cfg.ApplyEnv()
	cfg.resolve()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML at path on Default.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.ActiveProvider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.updateProvider("openai", func(pc *llm.ProviderConfig) { pc.Model = v })
	}
	if v := os.Getenv("OPENAI_PROMPT_ID"); v != "" {
		c.Report.HostedPromptID = v
	}
	if v := os.Getenv("OPENAI_PROMPT_VERSION"); v != "" {
		c.Report.HostedPromptVersion = v
	}
	if v := os.Getenv("REPORT_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Report.Strict = b
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Storage.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// defaultKeyEnv names the API key variable for providers whose config
// omits api_key_env.
var defaultKeyEnv = map[string]string{
	"openai":   "OPENAI_API_KEY",
	"gemini":   "GEMINI_API_KEY",
	"deepseek": "DEEPSEEK_API_KEY",
}

// resolve reads API keys from the environment and picks a provider when none
// is configured: openai when its key is present, otherwise the stub.
func (c *Config) resolve() {
	for name, env := range defaultKeyEnv {
		c.updateProvider(name, func(pc *llm.ProviderConfig) {
			if pc.APIKeyEnv == "" {
				pc.APIKeyEnv = env
			}
			if pc.APIKey == "" {
				pc.APIKey = os.Getenv(pc.APIKeyEnv)
			}
		})
	}
	if c.LLM.ActiveProvider == "" {
		c.LLM.ActiveProvider = agent.FallbackProvider
		if c.LLM.Providers["openai"].APIKey != "" {
			c.LLM.ActiveProvider = "openai"
		}
	}
}

func (c *Config) updateProvider(name string, fn func(*llm.ProviderConfig)) {
	if c.LLM.Providers == nil {
		c.LLM.Providers = map[string]llm.ProviderConfig{}
	}
	pc := c.LLM.Providers[name]
	fn(&pc)
	c.LLM.Providers[name] = pc
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
