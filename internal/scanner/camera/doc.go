// Package camera abstracts the frame sources the scanner reads from.
//
// A Provider enumerates devices and opens them; a Handle yields frames until
// it is closed. Three providers ship with gymadmin:
//
//   - V4L2Provider: Linux video devices through github.com/blackjack/webcam
//   - ImageDirProvider: replays image files from a directory, one per frame
//   - LineProvider: keyboard-wedge barcode scanners or stdin, where every
//     line is an already-decoded payload
package camera
