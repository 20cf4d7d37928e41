package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultServer       = "http://localhost:3000/api"
	DefaultOutput       = "table"
	DefaultTimeout      = 30 * time.Second
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultScanSource   = "v4l2"
	DefaultScanFPS      = 5
	DefaultSuccessDelay = 800 * time.Millisecond
	DefaultFailureDelay = 2000 * time.Millisecond
	DefaultRepeatHold   = 3 * time.Second
	DefaultPerPage      = 20
	DefaultEmailPerPage = 100
	DefaultSearchDelay  = 300 * time.Millisecond
	DefaultFileName     = "config.yaml"
	defaultDirName      = "gymadmin"
	fallbackHomeDirName = ".gymadmin"
)

// CLIConfig is the gymadmin configuration file.
type CLIConfig struct {
	// Server is the backend base URL including the API base path.
	Server  string        `koanf:"server" yaml:"server" json:"server"`
	Output  string        `koanf:"output" yaml:"output" json:"output"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout" json:"timeout"`
	// DataDir holds the encrypted session store and its key.
	DataDir   string `koanf:"data_dir" yaml:"data_dir" json:"data_dir"`
	TLSCAFile string `koanf:"tls_ca_file" yaml:"tls_ca_file,omitempty" json:"tls_ca_file,omitempty"`

	Log     LogSection     `koanf:"log" yaml:"log" json:"log"`
	Scanner ScannerSection `koanf:"scanner" yaml:"scanner" json:"scanner"`
	Stores  StoresSection  `koanf:"stores" yaml:"stores" json:"stores"`
	Search  SearchSection  `koanf:"search" yaml:"search" json:"search"`
}

// LogSection configures stderr logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"`
}

// ScannerSection configures `qr scan`.
type ScannerSection struct {
	// Source is v4l2, dir or stdin.
	Source string `koanf:"source" yaml:"source" json:"source"`
	// Device is a device ID for v4l2 (e.g. /dev/video2) or the image
	// directory for dir.
	Device       string        `koanf:"device" yaml:"device,omitempty" json:"device,omitempty"`
	FPS          float64       `koanf:"fps" yaml:"fps" json:"fps"`
	SuccessDelay time.Duration `koanf:"success_delay" yaml:"success_delay" json:"success_delay"`
	FailureDelay time.Duration `koanf:"failure_delay" yaml:"failure_delay" json:"failure_delay"`
	RepeatHold   time.Duration `koanf:"repeat_hold" yaml:"repeat_hold" json:"repeat_hold"`
}

// StoresSection sets page sizes.
type StoresSection struct {
	PerPage      int `koanf:"per_page" yaml:"per_page" json:"per_page"`
	EmailPerPage int `koanf:"email_per_page" yaml:"email_per_page" json:"email_per_page"`
}

// SearchSection tunes interactive search.
type SearchSection struct {
	Debounce time.Duration `koanf:"debounce" yaml:"debounce" json:"debounce"`
}

// Default returns the built-in configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  DefaultServer,
		Output:  DefaultOutput,
		Timeout: DefaultTimeout,
		DataDir: DefaultDataDir(),
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Scanner: ScannerSection{
			Source:       DefaultScanSource,
			FPS:          DefaultScanFPS,
			SuccessDelay: DefaultSuccessDelay,
			FailureDelay: DefaultFailureDelay,
			RepeatHold:   DefaultRepeatHold,
		},
		Stores: StoresSection{
			PerPage:      DefaultPerPage,
			EmailPerPage: DefaultEmailPerPage,
		},
		Search: SearchSection{
			Debounce: DefaultSearchDelay,
		},
	}
}

// baseDir is the per-user gymadmin directory.
func baseDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, defaultDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, fallbackHomeDirName)
}

// DefaultConfigPath returns the per-user configuration file path.
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), DefaultFileName)
}

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir() string {
	return filepath.Join(baseDir(), "data")
}
