package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	validOutputs    = []string{"table", "json", "yaml"}
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"text", "json"}
	validSources    = []string{"v4l2", "dir", "stdin"}
)

const (
	maxScanFPS  = 30
	maxPageSize = 500
)

// Verify checks cfg and reports every problem found.
func Verify(cfg *CLIConfig) error {
	var errs []error

	if err := verifyServer(cfg.Server); err != nil {
		errs = append(errs, err)
	}
	if !oneOf(cfg.Output, validOutputs) {
		errs = append(errs, fmt.Errorf("output must be one of %s", strings.Join(validOutputs, ", ")))
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if cfg.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}

	if !oneOf(strings.ToLower(cfg.Log.Level), validLogLevels) {
		errs = append(errs, fmt.Errorf("log.level must be one of %s", strings.Join(validLogLevels, ", ")))
	}
	if !oneOf(strings.ToLower(cfg.Log.Format), validLogFormats) {
		errs = append(errs, fmt.Errorf("log.format must be one of %s", strings.Join(validLogFormats, ", ")))
	}

	errs = append(errs, verifyScanner(&cfg.Scanner)...)

	if cfg.Stores.PerPage < 1 || cfg.Stores.PerPage > maxPageSize {
		errs = append(errs, fmt.Errorf("stores.per_page must be between 1 and %d", maxPageSize))
	}
	if cfg.Stores.EmailPerPage < 1 || cfg.Stores.EmailPerPage > maxPageSize {
		errs = append(errs, fmt.Errorf("stores.email_per_page must be between 1 and %d", maxPageSize))
	}
	if cfg.Search.Debounce < 0 {
		errs = append(errs, errors.New("search.debounce must not be negative"))
	}

	return errors.Join(errs...)
}

func verifyServer(server string) error {
	if server == "" {
		return errors.New("server is required")
	}
	u, err := url.Parse(server)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server must be an http or https URL, got %q", server)
	}
	if u.Host == "" {
		return fmt.Errorf("server has no host: %q", server)
	}
	return nil
}

func verifyScanner(s *ScannerSection) []error {
	var errs []error
	if !oneOf(s.Source, validSources) {
		errs = append(errs, fmt.Errorf("scanner.source must be one of %s", strings.Join(validSources, ", ")))
	}
	if s.Source == "dir" && s.Device == "" {
		errs = append(errs, errors.New("scanner.device must name the image directory when scanner.source is dir"))
	}
	if s.FPS <= 0 || s.FPS > maxScanFPS {
		errs = append(errs, fmt.Errorf("scanner.fps must be in (0, %d]", maxScanFPS))
	}
	if s.SuccessDelay <= 0 || s.FailureDelay <= 0 {
		errs = append(errs, errors.New("scanner delays must be positive"))
	}
	if s.RepeatHold < 0 {
		errs = append(errs, errors.New("scanner.repeat_hold must not be negative"))
	}
	return errs
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
