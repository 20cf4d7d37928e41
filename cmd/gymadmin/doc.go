// Package main provides the entry point for gymadmin.
//
// gymadmin administers a Gym One backend from the terminal:
//
//   - Members, memberships and products (list, search, edit, sell)
//   - Email templates, bulk sends and delivery logs
//   - QR check-in scanning from a camera, an image directory or a barcode reader
//
// Usage:
//
//	gymadmin auth login -e admin@example.com
//	gymadmin member list --search anna -o json
//	gymadmin qr scan --device /dev/video0
//	gymadmin shell
package main
