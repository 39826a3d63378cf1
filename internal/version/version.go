// Package version carries the release string printed by --version.
package version

// Version is overridden at link time:
//
//	go build -ldflags "-X polyreact/internal/version.Version=v1.2.3"
var Version = "dev"
