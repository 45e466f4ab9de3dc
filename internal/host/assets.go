package host

import (
	"slices"
	"sort"
)

// Loading methods for script assets.
const (
	LoadingDefer = "defer"
	LoadingAsync = "async"
)

// Asset is a stylesheet or script added to every page.
type Asset struct {
	// Filename is relative to _static, or an absolute URL.
	Filename string
	Priority int
	Loading  string
}

// AssetOption configures an asset.
type AssetOption func(*Asset)

// AssetPriority orders the asset; lower values are emitted first.
func AssetPriority(p int) AssetOption {
	return func(a *Asset) { a.Priority = p }
}

// AssetLoading sets the script loading method ("defer" or "async").
func AssetLoading(method string) AssetOption {
	return func(a *Asset) { a.Loading = method }
}

func newAsset(name string, opts []AssetOption) Asset {
	asset := Asset{Filename: name, Priority: DefaultPriority}
	for _, opt := range opts {
		opt(&asset)
	}
	return asset
}

// AddJSFile adds a script to every page. Adding the same file again replaces it.
func (a *App) AddJSFile(name string, opts ...AssetOption) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.jsFiles = upsertAsset(a.jsFiles, newAsset(name, opts))
}

// AddCSSFile adds a stylesheet to every page. Adding the same file again replaces it.
func (a *App) AddCSSFile(name string, opts ...AssetOption) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cssFiles = upsertAsset(a.cssFiles, newAsset(name, opts))
}

// JSFiles returns the scripts ordered by priority, then registration order.
func (a *App) JSFiles() []Asset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return sortedAssets(a.jsFiles)
}

// CSSFiles returns the stylesheets ordered by priority, then registration order.
func (a *App) CSSFiles() []Asset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return sortedAssets(a.cssFiles)
}

func upsertAsset(list []Asset, asset Asset) []Asset {
	for i := range list {
		if list[i].Filename == asset.Filename {
			list[i] = asset
			return list
		}
	}
	return append(list, asset)
}

func sortedAssets(list []Asset) []Asset {
	out := slices.Clone(list)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}
