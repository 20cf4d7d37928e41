// Package command defines the gymadmin commands on urfave/cli/v2.
//
//   - root.go: App, global flags, error reporting and exit codes
//   - runtime.go: the per-process Runtime shared by all commands
//   - auth.go, member.go, membership.go, product.go, email.go: backend commands
//   - qr.go: live scanning and member code lookup
//   - dashboard.go, config.go, version.go, shell.go: everything else
//
// Every command follows the same shape: parse flags, call a store through
// the Runtime, render the store's result with the selected formatter.
package command
