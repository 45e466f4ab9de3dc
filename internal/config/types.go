package config

// Config represents the build configuration for a documentation project.
type Config struct {
	Project    ProjectConfig    `yaml:"project"`
	Source     SourceConfig     `yaml:"source"`
	Output     OutputConfig     `yaml:"output"`
	HTMLTheme  string           `yaml:"html_theme"`
	Extensions []string         `yaml:"extensions,omitempty"`
	Highlight  HighlightConfig  `yaml:"highlight"`
	Theme      ThemeOptions     `yaml:"theme"`
	Build      BuildConfig      `yaml:"build"`
	Watch      WatchConfig      `yaml:"watch"`
	Notify     *NotifyConfig    `yaml:"notify,omitempty"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// ProjectConfig holds site-wide metadata exposed to templates.
type ProjectConfig struct {
	Title     string `yaml:"title"`
	BaseURL   string `yaml:"base_url,omitempty"` // absolute site URL; its host decides which links are external
	Language  string `yaml:"language,omitempty"`
	Copyright string `yaml:"copyright,omitempty"`
}

// SourceConfig describes where documents are read from.
type SourceConfig struct {
	Directory string   `yaml:"directory"`
	RootDoc   string   `yaml:"root_doc,omitempty"` // docname of the navigation root (default "index")
	Exclude   []string `yaml:"exclude,omitempty"`  // glob patterns relative to Directory
	Static    []string `yaml:"static,omitempty"`   // extra static directories copied into _static
}

// OutputFormat selects the builder.
type OutputFormat string

const (
	OutputFormatHTML OutputFormat = "html"
	OutputFormatJSON OutputFormat = "json"
)

// OutputConfig represents output configuration.
type OutputConfig struct {
	Directory string       `yaml:"directory"`
	Format    OutputFormat `yaml:"format,omitempty"`
	Clean     bool         `yaml:"clean,omitempty"` // remove output directory before a full rebuild
}

// HighlightConfig selects the chroma styles for code blocks.
type HighlightConfig struct {
	Style     string `yaml:"style,omitempty"`
	DarkStyle string `yaml:"dark_style,omitempty"` // empty disables the dark stylesheet
}

// BuildConfig holds build tuning knobs.
type BuildConfig struct {
	// StateFile is the sqlite database that keeps document fingerprints between builds.
	// Empty disables persistence: every build is a full rebuild.
	StateFile string `yaml:"state_file,omitempty"`
	// Jobs caps parallel reading and writing. Values <1 are coerced to 1.
	Jobs int `yaml:"jobs,omitempty"`
	// Since marks documents changed in git since the given revision as outdated,
	// in addition to fingerprint changes.
	Since string `yaml:"since,omitempty"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce        string `yaml:"debounce,omitempty"`         // duration string (default 500ms)
	RebuildInterval string `yaml:"rebuild_interval,omitempty"` // periodic full rebuild; empty disables
}

// NotifyConfig enables publishing build summaries to NATS.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject,omitempty"`
	// Retries is the number of publish retries after the first failure.
	Retries      int              `yaml:"retries,omitempty"`
	Backoff      RetryBackoffMode `yaml:"backoff,omitempty"`       // fixed|linear|exponential (default linear)
	RetryInitial string           `yaml:"retry_initial,omitempty"` // base delay (default 500ms)
	RetryMax     string           `yaml:"retry_max,omitempty"`     // delay cap (default 5s)
}

// RetryBackoffMode selects how delays grow between publish retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// MonitoringConfig represents metrics and logging configuration.
type MonitoringConfig struct {
	MetricsAddr string        `yaml:"metrics_addr,omitempty"` // e.g. ":9102"; served in watch mode only
	Logging     LoggingConfig `yaml:"logging"`
}

// LoggingConfig selects log level and handler format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// HasExtension reports whether an extension name is enabled.
func (c *Config) HasExtension(name string) bool {
	for _, e := range c.Extensions {
		if e == name {
			return true
		}
	}
	return false
}
