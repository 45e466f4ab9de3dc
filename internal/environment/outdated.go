package environment

import (
	"sort"

	"github.com/maruel/natural"
)

// Reasons for a full rebuild.
const (
	ReasonNoState       = "no previous state"
	ReasonConfigChanged = "configuration changed"
	ReasonNavChanged    = "navigation changed"
	ReasonForced        = "full rebuild requested"
)

// Outdated is the host's record of stale documents for one build.
type Outdated struct {
	Added   []string
	Changed []string
	Removed []string
	// FullRebuild means every document must be written again.
	FullRebuild bool
	Reason      string
}

// Stale returns added and changed docnames in natural order.
func (o Outdated) Stale() []string {
	out := make([]string, 0, len(o.Added)+len(o.Changed))
	out = append(out, o.Added...)
	out = append(out, o.Changed...)
	sort.Sort(natural.StringSlice(out))
	return out
}

// Empty reports whether nothing needs rebuilding.
func (o Outdated) Empty() bool {
	return !o.FullRebuild && len(o.Added) == 0 && len(o.Changed) == 0 && len(o.Removed) == 0
}

// Compare computes the outdated documents between a previous and a current
// snapshot. A nil previous snapshot yields a full rebuild.
func Compare(prev, cur *Snapshot) Outdated {
	var o Outdated
	for name, fp := range cur.Fingerprints {
		old, ok := prevFingerprint(prev, name)
		switch {
		case !ok:
			o.Added = append(o.Added, name)
		case old != fp:
			o.Changed = append(o.Changed, name)
		}
	}
	if prev != nil {
		for name := range prev.Fingerprints {
			if _, ok := cur.Fingerprints[name]; !ok {
				o.Removed = append(o.Removed, name)
			}
		}
	}
	sort.Sort(natural.StringSlice(o.Added))
	sort.Sort(natural.StringSlice(o.Changed))
	sort.Sort(natural.StringSlice(o.Removed))

	switch {
	case prev == nil:
		o.FullRebuild, o.Reason = true, ReasonNoState
	case prev.ConfigHash != cur.ConfigHash:
		o.FullRebuild, o.Reason = true, ReasonConfigChanged
	case prev.NavHash != cur.NavHash:
		o.FullRebuild, o.Reason = true, ReasonNavChanged
	}
	return o
}

// MarkChanged adds docnames to the changed list unless they are already stale.
// Unknown docnames are ignored.
func (o *Outdated) MarkChanged(cur *Snapshot, names []string) {
	seen := make(map[string]struct{}, len(o.Added)+len(o.Changed))
	for _, n := range o.Added {
		seen[n] = struct{}{}
	}
	for _, n := range o.Changed {
		seen[n] = struct{}{}
	}
	for _, n := range names {
		if _, ok := cur.Fingerprints[n]; !ok {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		o.Changed = append(o.Changed, n)
	}
	sort.Sort(natural.StringSlice(o.Changed))
}

func prevFingerprint(prev *Snapshot, name string) (string, bool) {
	if prev == nil {
		return "", false
	}
	fp, ok := prev.Fingerprints[name]
	return fp, ok
}
