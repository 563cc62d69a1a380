// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String describes the build in one line.
func String() string {
	return fmt.Sprintf("htmltoc version %s (commit: %s, built: %s)", Version, Commit, Date)
}
