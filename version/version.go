// Package version holds build-time version information.
// Values are injected with -ldflags "-X github.com/mmuldo/recolor/version.Version=x.y.z".
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"
)

// String returns a human-readable version line.
func String() string {
	platform := fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	if Commit != "unknown" && Date != "unknown" {
		commit := Commit
		if len(commit) > 8 {
			commit = commit[:8]
		}
		return fmt.Sprintf("recolor version %s (commit: %s, built: %s, %s, %s)",
			Version, commit, Date, runtime.Version(), platform)
	}
	return fmt.Sprintf("recolor version %s (%s, %s)", Version, runtime.Version(), platform)
}

// Short returns just the version.
func Short() string {
	return Version
}
