package version

import "runtime"

// Build holds the build identifier, injected via -ldflags. Default "dev".
var Build = "dev"

// String returns the build identifier with the Go runtime version.
func String() string {
	return Build + " (" + runtime.Version() + ")"
}
