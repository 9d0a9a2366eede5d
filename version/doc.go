// Package version reports the build of the bookstore binaries.
//
// Release builds set the version and commit with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/bookstore/version.Version=1.2.0" ./cmd/bookstore
//
// Other builds fall back to the VCS stamps of the Go toolchain.
package version
