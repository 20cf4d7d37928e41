// Package output renders command results.
//
//   - formatter.go: Formatter interface, ParseFormat
//   - table.go: aligned tables from structs, slices and maps
//   - json.go, yaml.go: machine-readable output
//   - banner.go: one-line stderr notices for store errors and hints
//   - spinner.go: activity indicator for slow backend calls
//
// Struct fields use their json tag as the column name. A `table:"wide"` tag
// hides a column unless --wide is set; `table:"-"` always hides it.
package output
