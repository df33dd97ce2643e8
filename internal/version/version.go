package version

import "fmt"

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0"

	// GitCommit is set with -ldflags at build time.
	GitCommit = ""
)

// String returns the version with the commit, when known.
func String() string {
	if GitCommit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}
