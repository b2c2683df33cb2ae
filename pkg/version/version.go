// Package version holds build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time, e.g.
//
//	-ldflags "-X github.com/michaelvu812/mvpaginator/pkg/version.version=v1.2.3"
//
//nolint:gochecknoglobals // Overridden by the linker.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the release version, falling back to the module version
// recorded by go install.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns when the binary was built.
func GetBuildDate() string {
	return buildDate
}

// String is the one-line description printed by the version command.
func String() string {
	return fmt.Sprintf("paginator %s (commit %s, built %s, %s/%s, %s)",
		GetVersion(), gitCommit, buildDate, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
