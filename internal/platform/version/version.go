// Package version provides information about the build version of the service.
package version

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'surveysync/internal/platform/version.version=v1.0.0'
	// -X 'surveysync/internal/platform/version.commit=abcd' -X 'surveysync/internal/platform/version.date=2025-09-02'"
	return BuildInfo{
		Service: service,
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// Version returns the build version, "dev" for local builds
func Version() string { return version }

var (
	service = "ovation-survey-sync"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
