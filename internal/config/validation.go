package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
)

// ValidateConfig validates the configuration structure. Logo pairing is not
// checked here: the theme reports it when the builder is initialized.
func ValidateConfig(cfg *Config) error {
	if cfg.Output.Format != OutputFormatHTML && cfg.Output.Format != OutputFormatJSON {
		return errors.ValidationError(fmt.Sprintf("invalid output.format %q (valid: %v)", cfg.Output.Format, outputFormats.valid())).Build()
	}
	if cfg.Project.BaseURL != "" {
		u, err := url.Parse(cfg.Project.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.ValidationError("project.base_url must be an absolute URL").WithContext("base_url", cfg.Project.BaseURL).Build()
		}
	}
	if err := validatePaths(cfg); err != nil {
		return err
	}
	if err := validateDurations(cfg); err != nil {
		return err
	}
	if err := validateNotify(cfg.Notify); err != nil {
		return err
	}
	for _, icon := range cfg.Theme.ExtraHeaderLinkIcons {
		if icon.Link == "" {
			return errors.ValidationError("extra_header_link_icons entry has no link").WithContext("label", icon.Label).Build()
		}
	}
	return nil
}

func validatePaths(cfg *Config) error {
	src, err := filepath.Abs(cfg.Source.Directory)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid source.directory").Fatal().Build()
	}
	out, err := filepath.Abs(cfg.Output.Directory)
	if err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid output.directory").Fatal().Build()
	}
	if src == out {
		return errors.ValidationError("output.directory must differ from source.directory").Build()
	}
	if rel, err := filepath.Rel(out, src); err == nil && !strings.HasPrefix(rel, "..") {
		return errors.ValidationError("source.directory must not live inside output.directory").Build()
	}
	return nil
}

func validateDurations(cfg *Config) error {
	if _, err := time.ParseDuration(cfg.Watch.Debounce); err != nil {
		return errors.WrapError(err, errors.CategoryValidation, "invalid watch.debounce").Fatal().Build()
	}
	if cfg.Watch.RebuildInterval != "" {
		d, err := time.ParseDuration(cfg.Watch.RebuildInterval)
		if err != nil {
			return errors.WrapError(err, errors.CategoryValidation, "invalid watch.rebuild_interval").Fatal().Build()
		}
		if d < time.Minute {
			return errors.ValidationError("watch.rebuild_interval must be at least 1m").Build()
		}
	}
	return nil
}

// DebounceDuration returns the parsed watch debounce.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// RebuildEvery returns the periodic rebuild interval, zero when disabled.
func (w WatchConfig) RebuildEvery() time.Duration {
	if w.RebuildInterval == "" {
		return 0
	}
	d, _ := time.ParseDuration(w.RebuildInterval)
	return d
}

func validateNotify(n *NotifyConfig) error {
	if n == nil {
		return nil
	}
	if n.NATSURL == "" {
		return errors.ValidationError("notify.nats_url is required when notify is configured").Build()
	}
	if n.Retries < 0 {
		return errors.ValidationError("notify.retries cannot be negative").Build()
	}
	switch n.Backoff {
	case "", RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return errors.ValidationError(fmt.Sprintf("invalid notify.backoff %q", n.Backoff)).Build()
	}
	for key, raw := range map[string]string{"retry_initial": n.RetryInitial, "retry_max": n.RetryMax} {
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			return errors.ValidationError("notify." + key + " must be a positive duration").WithContext("value", raw).Build()
		}
	}
	return nil
}

// RetryDelays returns the parsed base delay and cap, zero when unset.
func (n NotifyConfig) RetryDelays() (initial, maxDelay time.Duration) {
	initial, _ = time.ParseDuration(n.RetryInitial)
	maxDelay, _ = time.ParseDuration(n.RetryMax)
	return initial, maxDelay
}
