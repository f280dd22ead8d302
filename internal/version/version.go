// Package version is overridden at build time:
//
//	go build -ldflags "-X github.com/bryanwahyu/truesight/internal/version.Version=v1.2.3"
package version

var Version = "dev"
