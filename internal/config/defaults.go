package config

// Default returns a configuration populated with defaults. Parse decodes
// YAML on top of it.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Title:    "Documentation",
			Language: "en",
		},
		Source: SourceConfig{
			Directory: "docs",
			RootDoc:   "index",
		},
		Output: OutputConfig{
			Directory: "_build/html",
			Format:    OutputFormatHTML,
		},
		HTMLTheme: "awesome",
		Highlight: HighlightConfig{
			Style:     "friendly",
			DarkStyle: "monokai",
		},
		Theme: DefaultThemeOptions(),
		Build: BuildConfig{
			Jobs: 4,
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		Monitoring: MonitoringConfig{
			Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		},
	}
}

// applyDefaults fills values left empty after decoding and normalization.
func applyDefaults(cfg *Config) {
	if cfg.Project.Title == "" {
		cfg.Project.Title = "Documentation"
	}
	if cfg.Source.Directory == "" {
		cfg.Source.Directory = "docs"
	}
	if cfg.Source.RootDoc == "" {
		cfg.Source.RootDoc = "index"
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "_build/" + string(cfg.Output.Format)
	}
	if cfg.HTMLTheme == "" {
		cfg.HTMLTheme = "awesome"
	}
	if cfg.Highlight.Style == "" {
		cfg.Highlight.Style = "friendly"
	}
	if cfg.Build.Jobs < 1 {
		cfg.Build.Jobs = 1
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = "500ms"
	}
	if cfg.Notify != nil && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "awesome.build.finished"
	}
	if cfg.Theme.BreadcrumbsSeparator == "" {
		cfg.Theme.BreadcrumbsSeparator = "/"
	}
	cfg.Theme = cfg.Theme.Clone()
}
