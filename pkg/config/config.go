// Package config loads the daemon's YAML configuration and watches it for
// changes.
package config

import (
	"errors"
	"fmt"
	"github.com/hashicorp/go-multierror"
	"time"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Enabled        bool          `yaml:"enabled"`
	MinWordLength  int           `yaml:"min_word_length"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	KeystrokeDelay time.Duration `yaml:"keystroke_delay"`
	// History keeps a log of applied corrections for `smarttype stats`.
	History       bool              `yaml:"history"`
	IgnoreDevices []string          `yaml:"ignore_devices,omitempty"`
	TypoFiles     []string          `yaml:"typo_files,omitempty"`
	CustomTypos   map[string]string `yaml:"custom_typos"`
}

func Default() *Config {
	return &Config{
		Enabled:        true,
		MinWordLength:  2,
		IdleTimeout:    2 * time.Second,
		KeystrokeDelay: 10 * time.Millisecond,
		History:        true,
		CustomTypos: map[string]string{
			"hte":     "the",
			"becuase": "because",
		},
	}
}

func (c *Config) Validate() error {
	var result *multierror.Error

	if c.MinWordLength < 1 {
		result = multierror.Append(result, fmt.Errorf("%w: min_word_length must be at least 1, got %d", ErrInvalid, c.MinWordLength))
	}
	if c.IdleTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: idle_timeout must be positive, got %s", ErrInvalid, c.IdleTimeout))
	}
	if c.KeystrokeDelay < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: keystroke_delay must not be negative, got %s", ErrInvalid, c.KeystrokeDelay))
	}
	for typo, correction := range c.CustomTypos {
		if typo == "" || correction == "" {
			result = multierror.Append(result, fmt.Errorf("%w: custom_typos entry %q: %q is empty", ErrInvalid, typo, correction))
		}
	}

	return result.ErrorOrNil()
}
