// Package version holds the build version of mkservice.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/NielsdaWheelz/mkservice/internal/version.Version=v1.2.3".
var Version = "dev"
