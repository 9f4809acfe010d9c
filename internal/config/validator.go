package config

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
)

// Validator checks a configuration before it is used
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns a *errors.ConfigError naming the first invalid field
func (v *Validator) Validate(cfg *Config) error {
	if err := v.validateParse(&cfg.Parse); err != nil {
		return err
	}
	if cfg.Cache.Size <= 0 {
		return idlerrors.NewConfigError("cache.size", strconv.Itoa(cfg.Cache.Size),
			errors.New("cache size must be positive"))
	}
	if err := v.validateWatch(&cfg.Watch); err != nil {
		return err
	}
	if err := v.validateOutput(&cfg.Output); err != nil {
		return err
	}
	for _, pattern := range cfg.Entries {
		if !doublestar.ValidatePattern(pattern) {
			return idlerrors.NewConfigError("entries", pattern, doublestar.ErrBadPattern)
		}
	}
	return nil
}

func (v *Validator) validateParse(p *Parse) error {
	if p.Concurrency <= 0 {
		return idlerrors.NewConfigError("parse.concurrency", strconv.Itoa(p.Concurrency),
			fmt.Errorf("concurrency must be positive, got %d", p.Concurrency))
	}
	return nil
}

func (v *Validator) validateWatch(w *Watch) error {
	if w.DebounceMs < 0 {
		return idlerrors.NewConfigError("watch.debounce_ms", strconv.Itoa(w.DebounceMs),
			fmt.Errorf("debounce cannot be negative, got %d", w.DebounceMs))
	}
	for _, pattern := range w.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return idlerrors.NewConfigError("watch.exclude", pattern, doublestar.ErrBadPattern)
		}
	}
	return nil
}

func (v *Validator) validateOutput(o *Output) error {
	switch o.Format {
	case FormatJSON, FormatYAML:
		return nil
	default:
		return idlerrors.NewConfigError("output.format", o.Format,
			fmt.Errorf("unknown output format %q, expected %s or %s", o.Format, FormatJSON, FormatYAML))
	}
}
