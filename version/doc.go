// Package version describes the running host: the application, domain and
// environment from configuration plus the build metadata of the binary.
//
// Commit, branch and build time can be stamped at link time; otherwise the
// VCS settings embedded by the Go toolchain are used:
//
//	go build -ldflags "-X github.com/kbukum/webhost/version.Commit=$(git rev-parse --short HEAD)"
package version
