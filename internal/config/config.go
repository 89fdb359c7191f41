package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DirName is the per-user directory holding config and history.
const DirName = ".autolysis"

// LogConfig selects the zap logger flavor.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // console|json
}

// Global configuration structure.
type Global struct {
	APIKey           string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL          string  `mapstructure:"base_url" yaml:"base_url"`
	DefaultProvider  string  `mapstructure:"default_provider" yaml:"default_provider"`
	DefaultModel     string  `mapstructure:"default_model" yaml:"default_model"`
	MaxTokens        int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature      float64 `mapstructure:"temperature" yaml:"temperature"`
	PromptTokenLimit int     `mapstructure:"prompt_token_limit" yaml:"prompt_token_limit"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local runtimes (Ollama)
	OllamaHost       string `mapstructure:"ollama_host" yaml:"ollama_host"`
	OllamaTimeoutSec int    `mapstructure:"ollama_timeout_sec" yaml:"ollama_timeout_sec"`

	// Charts and input
	MaxDistributionCharts int     `mapstructure:"max_distribution_charts" yaml:"max_distribution_charts"`
	ChartSizeIn           float64 `mapstructure:"chart_size_in" yaml:"chart_size_in"`
	Encoding              string  `mapstructure:"encoding" yaml:"encoding"`

	// Run history
	HistoryEnabled bool   `mapstructure:"history_enabled" yaml:"history_enabled"`
	HistoryDB      string `mapstructure:"history_db" yaml:"history_db"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// Dir returns ~/.autolysis.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "config: resolve home dir")
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath returns ~/.autolysis/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes c as YAML to cfgFile, or to DefaultPath when cfgFile is empty.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "config: mkdir config dir")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "config: marshal yaml")
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return eris.Wrap(err, "config: write config")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_provider", "openrouter")
	v.SetDefault("default_model", "")
	v.SetDefault("max_tokens", 500)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("prompt_token_limit", 0)
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("ollama_host", "http://127.0.0.1:11434")
	v.SetDefault("ollama_timeout_sec", 60)
	v.SetDefault("max_distribution_charts", 3)
	v.SetDefault("chart_size_in", 6.0)
	v.SetDefault("encoding", "auto")
	v.SetDefault("history_enabled", true)
	v.SetDefault("history_db", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load reads configuration. Precedence: env > config file > defaults; flags are
// applied on top by the caller. api_key falls back to OPENROUTER_API_KEY and
// AIPROXY_TOKEN.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("AUTOLYSIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.BindEnv("api_key", "AUTOLYSIS_API_KEY", "OPENROUTER_API_KEY", "AIPROXY_TOKEN"); err != nil {
		return nil, eris.Wrap(err, "config: bind api_key env")
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !eris.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal config")
	}
	if c.HistoryDB == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.HistoryDB = filepath.Join(dir, "history.db")
	}
	return &c, nil
}
