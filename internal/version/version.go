package version

// Version contains the theme version reported to the host in extension metadata.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/awesometheme/internal/version.Version=v0.4.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version with commit information for the CLI version flag.
func String() string {
	if GitCommit == "unknown" || GitCommit == "" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
