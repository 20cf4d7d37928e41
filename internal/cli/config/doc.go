// Package config defines the gymadmin CLI configuration.
//
//   - spec.go: CLIConfig and its sections, Default
//   - loader.go: Load (file, GYMADMIN_* env, flags) and Save
//   - verify.go: Verify
//
// The default file lives at $XDG_CONFIG_HOME/gymadmin/config.yaml (or the
// platform equivalent); session data lives under data_dir.
package config
