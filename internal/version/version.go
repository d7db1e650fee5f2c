// Package version holds build metadata for cdcreco, set with -ldflags -X.
package version

var (
	Version   = "dev"
	GitSHA    = "unknown"
	BuildTime = "unknown"
)
