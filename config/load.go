package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

func expandEnvVars(raw []byte) []byte {
	return envPattern.ReplaceAllFunc(raw, func(m []byte) []byte {
		key := envPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(key)))
	})
}

// LoadFromFile reads a JSON config, or YAML when the file ends in .yaml or .yml.
// $(VAR) placeholders are replaced with environment variables before decoding.
func LoadFromFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw = expandEnvVars(raw)

	cfg := Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decoding yaml config: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decoding json config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.HistoryDays < 0 {
		errs = append(errs, fmt.Errorf("history_days must not be negative"))
	}
	names := map[string]struct{}{}
	for i, t := range c.Targets {
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("target %d (%s): %w", i, t.DisplayName(), err))
			continue
		}
		if _, ok := names[t.DisplayName()]; ok {
			errs = append(errs, fmt.Errorf("target %d: duplicate name %q", i, t.DisplayName()))
		}
		names[t.DisplayName()] = struct{}{}
	}
	return errors.Join(errs...)
}

func (t Target) Validate() error {
	if t.RootDir == "" {
		return errors.New("root_dir is required")
	}
	if t.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	for _, p := range t.Excludes {
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("bad exclude pattern %q: %w", p, err)
		}
	}
	_, err := t.Policy()
	return err
}

// FindTarget returns the target with the given display name.
func (c *Config) FindTarget(name string) (Target, bool) {
	for _, t := range c.Targets {
		if t.DisplayName() == name {
			return t, true
		}
	}
	return Target{}, false
}
