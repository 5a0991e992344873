// Package version holds the ripple version string.
package version

// Version is the current ripple version. Overridden at build time via
// -ldflags "-X ripple/internal/version.Version=...".
var Version = "0.3.0-dev"
