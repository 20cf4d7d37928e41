// Package confloader loads layered configuration with koanf.
//
// Sources are applied lowest to highest priority:
//
//  1. Defaults (the target struct as passed in)
//  2. Configuration file (YAML)
//  3. Environment variables (GYMADMIN_*)
//  4. Command-line flags (LoadMap)
//
// Environment names map to keys by lowercasing and treating a double
// underscore as the section separator, so GYMADMIN_SCANNER__SUCCESS_DELAY
// sets scanner.success_delay and GYMADMIN_DATA_DIR sets data_dir.
//
// Watcher reports edits to the configuration file so long-running commands
// can pick up changes such as the log level.
package confloader
