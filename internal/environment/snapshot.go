package environment

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"maps"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/docs"
)

// Snapshot is the state of the source tree recorded after a successful build.
type Snapshot struct {
	BuildID      string
	ConfigHash   string
	NavHash      string
	Fingerprints map[string]string // docname -> content fingerprint
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Fingerprints = maps.Clone(s.Fingerprints)
	return &out
}

// Fingerprint returns the content fingerprint of a document. Front matter and
// body are hashed separately so that reformatting the delimiter does not count.
func Fingerprint(doc *docs.Document) string {
	return mdfp.CalculateFingerprintFromParts(string(doc.Frontmatter), string(doc.Body))
}

// NewSnapshot fingerprints every discovered document.
func NewSnapshot(buildID, configHash string, documents []*docs.Document) *Snapshot {
	fps := make(map[string]string, len(documents))
	for _, doc := range documents {
		fps[doc.Name] = Fingerprint(doc)
	}
	return &Snapshot{
		BuildID:      buildID,
		ConfigHash:   configHash,
		NavHash:      docs.ComputeNavHash(documents),
		Fingerprints: fps,
	}
}

// ConfigHash hashes the parts of the configuration that affect every page.
// Watch and notification settings are left out.
func ConfigHash(cfg *config.Config) string {
	payload := struct {
		Project    config.ProjectConfig
		Theme      config.ThemeOptions
		Highlight  config.HighlightConfig
		HTMLTheme  string
		Extensions []string
		Format     config.OutputFormat
	}{cfg.Project, cfg.Theme, cfg.Highlight, cfg.HTMLTheme, cfg.Extensions, cfg.Output.Format}
	// Marshal cannot fail for these plain types.
	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
