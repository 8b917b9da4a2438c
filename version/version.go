// Package version exposes build metadata for the niemtran binary, populated
// via ldflags and [runtime/debug.ReadBuildInfo].
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Version is the application version, set via ldflags.
	Version string
	// Branch is the git branch, set via ldflags.
	Branch string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the git commit revision.
	Revision = getRevision()
	// GoVersion is the Go version used to build.
	GoVersion = runtime.Version()
)

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			if v.Value == "true" {
				modified = true
			}
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}

// String renders a one-line version summary for --version output.
func String() string {
	v := Version
	if v == "" {
		v = "devel"
	}

	parts := []string{v, "(" + Revision + ")", GoVersion}

	if BuildDate != "" {
		parts = append(parts, "built "+BuildDate)
	}

	return strings.Join(parts, " ")
}

// Verbose renders a multi-line version report.
func Verbose() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "version:   %s\n", String())

	if Branch != "" {
		fmt.Fprintf(&sb, "branch:    %s\n", Branch)
	}

	fmt.Fprintf(&sb, "go:        %s %s/%s\n", GoVersion, runtime.GOOS, runtime.GOARCH)

	return sb.String()
}
