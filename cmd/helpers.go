package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/autolysis-cli/internal/ai"
	"github.com/KaramelBytes/autolysis-cli/internal/loader"
	"go.uber.org/zap"
)

// inputFlags are the loader flags shared by analyze and profile.
type inputFlags struct {
	delimiter string
	encoding  string
	sheet     string
	decimal   string
	thousands string
	maxRows   int
}

func (f inputFlags) options() (loader.Options, error) {
	opt := loader.DefaultOptions()
	if cfg != nil && cfg.Encoding != "" {
		opt.Encoding = cfg.Encoding
	}
	if f.encoding != "" {
		opt.Encoding = f.encoding
	}
	opt.Sheet = f.sheet
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	return opt, nil
}

// resolveProvider normalizes a provider name, falling back to config and then openrouter.
func resolveProvider(flag string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(flag))
	if p == "" && cfg != nil {
		p = strings.ToLower(cfg.DefaultProvider)
	}
	switch p {
	case "", "openrouter":
		return ai.ProviderOpenRouter, nil
	case "aiproxy":
		return ai.ProviderAIProxy, nil
	case "ollama", "local":
		return ai.ProviderOllama, nil
	}
	return "", fmt.Errorf("unknown provider %q (available: %v)", p, ai.Providers())
}

// newRuntime builds the AI runtime for provider from the loaded configuration.
func newRuntime(provider string) (ai.Runtime, error) {
	rc := ai.RuntimeConfig{Logger: zap.L()}
	if cfg != nil {
		rc.APIKey = cfg.APIKey
		rc.BaseURL = cfg.BaseURL
		rc.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		rc.RetryMax = cfg.RetryMaxAttempts
		rc.BaseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		rc.MaxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		if provider == ai.ProviderOllama {
			rc.Host = cfg.OllamaHost
			if cfg.OllamaTimeoutSec > 0 {
				rc.HTTPTimeout = time.Duration(cfg.OllamaTimeoutSec) * time.Second
			}
		}
	}
	return ai.NewRuntime(provider, rc)
}
