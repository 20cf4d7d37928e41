// Package shutdown runs cleanup hooks when a long-running command ends.
//
// Commands such as `qr scan` hold a camera and may serve metrics. They
// register release hooks on a Handler and block in Wait, which returns after
// SIGINT or SIGTERM, a cancelled context, or an explicit Trigger (for
// example stdin reaching EOF). Hooks run once, newest first, under a shared
// timeout.
package shutdown
