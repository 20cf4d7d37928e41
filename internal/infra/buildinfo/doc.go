// Package buildinfo exposes version metadata injected at link time:
//
//	go build -ldflags "-X github.com/gymone/gymadmin/internal/infra/buildinfo.Version=v1.2.0 \
//	  -X github.com/gymone/gymadmin/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// When the variables are not set, Get falls back to the module build info
// recorded by the Go toolchain.
package buildinfo
