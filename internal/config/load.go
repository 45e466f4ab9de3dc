package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
)

// envFiles are tried in order; the first one that loads wins.
var envFiles = []string{".env", ".env.local"}

// Load reads, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").Fatal().WithContext("path", configPath).Build()
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes. Environment references
// (${VAR}) are expanded before decoding.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	// Decoding on top of the defaults keeps defaults for omitted keys (notably true-by-default booleans).
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}

	for _, w := range Normalize(cfg) {
		slog.Warn("config normalization", "warning", w)
	}
	applyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile loads environment variables from .env/.env.local files.
// Existing process environment variables are not overwritten.
func loadEnvFile() {
	for _, p := range envFiles {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load env file", "path", p, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", p)
		return
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").WithContext("path", configPath).Build()
	}

	example := Example()
	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").Fatal().WithContext("path", configPath).Build()
	}
	return nil
}

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := Default()
	cfg.Project = ProjectConfig{
		Title:    "My Documentation",
		BaseURL:  "https://docs.example.com",
		Language: "en",
	}
	cfg.Build.StateFile = ".awesome/state.db"
	cfg.Theme.MainNavLinks = NavLinks{
		{Label: "Docs", URL: "/index"},
		{Label: "Blog", URL: "https://blog.example.com"},
	}
	cfg.Theme.ExtraHeaderLinkIcons = HeaderIcons{{
		Label: "repository on GitHub",
		LinkIcon: LinkIcon{
			Link: "https://github.com/example/docs",
			Icon: `<svg height="26px" viewBox="0 0 16 16"><path fill="currentColor" d="M8 0C3.58 0 0 3.58 0 8c0 3.54 2.29 6.53 5.47 7.59"/></svg>`,
		},
	}}
	cfg.Theme.AwesomeExternalLinks = true
	return cfg
}
