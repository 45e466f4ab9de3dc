package build

import "errors"

// Sentinel domain errors used to classify high-level pipeline failures.
// They should always be wrapped with contextual information at the call site.
var (
	ErrDiscovery = errors.New("awesometheme: discovery error")
	ErrTheme     = errors.New("awesometheme: theme error")
	ErrRender    = errors.New("awesometheme: render error")
	ErrWrite     = errors.New("awesometheme: write error")
)
