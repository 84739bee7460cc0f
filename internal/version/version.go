package version

import "fmt"

var (
	MajorVersion = 1
	// The values below are overridden at build time with -ldflags "-X ely.by/tailor/internal/version.version=..."
	version = "dev"
	commit  = ""
)

func Version() string {
	if version == "dev" {
		return fmt.Sprintf("%d.0.0-dev", MajorVersion)
	}

	return version
}

func Commit() string {
	return commit
}
