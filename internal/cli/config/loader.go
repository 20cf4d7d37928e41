package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gymone/gymadmin/internal/infra/confloader"
)

// LoadOptions selects the sources for Load.
type LoadOptions struct {
	// Path is the configuration file. Empty means DefaultConfigPath, which
	// may be absent; an explicit path must exist.
	Path string
	// Flags holds the flags the user set, keyed by dotted config path.
	Flags map[string]any
}

// Load builds the configuration from defaults, the file, GYMADMIN_*
// environment variables and flags, in increasing priority, and verifies it.
func Load(opts LoadOptions) (*CLIConfig, error) {
	cfg := Default()

	var loaderOpt confloader.Option
	if opts.Path == "" {
		loaderOpt = confloader.WithOptionalConfigFile(DefaultConfigPath())
	} else {
		loaderOpt = confloader.WithConfigFile(opts.Path)
	}
	loader := confloader.NewLoader(loaderOpt)

	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if len(opts.Flags) > 0 {
		if err := loader.LoadMap(opts.Flags); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("apply flags: %w", err)
		}
	}

	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Path returns the file Load reads for an explicit path argument.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return DefaultConfigPath()
}

// Save writes cfg as YAML with mode 0600, replacing the file atomically.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
