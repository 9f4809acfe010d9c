package config

import (
	"os"
	"path/filepath"

	"github.com/standardbeagle/idlunify/internal/loader"
	"github.com/standardbeagle/idlunify/internal/unify"
)

const (
	// KDLFileName is looked up first
	KDLFileName = ".idlunify.kdl"
	// TOMLFileName is used when no KDL file exists
	TOMLFileName = "idlunify.toml"

	DefaultDebounceMs = 300
)

// Output formats accepted by the CLI
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Config struct {
	Parse   Parse
	Cache   Cache
	Watch   Watch
	Output  Output
	Entries []string // doublestar patterns relative to Parse.Root

	// Source is the file the configuration was read from, empty for defaults
	Source string
}

type Parse struct {
	Root            string
	SearchPaths     []string
	NamespaceRefer  bool
	Cache           bool
	IgnoreGoTag     bool
	IgnoreGoTagDash bool
	Concurrency     int
}

type Cache struct {
	Size int // number of parsed documents kept
}

type Watch struct {
	DebounceMs int
	Exclude    []string
}

type Output struct {
	Format string // json or yaml
	Pretty bool
}

// Default returns the configuration used when no file is found
func Default() *Config {
	return &Config{
		Parse: Parse{
			NamespaceRefer: true,
			Concurrency:    unify.DefaultConcurrency,
		},
		Cache:   Cache{Size: loader.DefaultCacheSize},
		Watch:   Watch{DebounceMs: DefaultDebounceMs, Exclude: []string{}},
		Output:  Output{Format: FormatJSON},
		Entries: []string{},
	}
}

// Load reads the configuration of dir. .idlunify.kdl wins over idlunify.toml;
// without either the defaults are returned. Relative roots and search paths
// are resolved against dir.
func Load(dir string) (*Config, error) {
	cfg, err := LoadKDL(dir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		if cfg, err = LoadTOML(dir); err != nil {
			return nil, err
		}
	}
	if cfg == nil {
		cfg = Default()
	}

	cfg.resolvePaths(dir)
	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths(dir string) {
	base, err := filepath.Abs(dir)
	if err != nil {
		base = dir
	}
	c.Parse.Root = absolute(base, c.Parse.Root)
	for i, p := range c.Parse.SearchPaths {
		c.Parse.SearchPaths[i] = absolute(base, p)
	}
}

func absolute(base, p string) string {
	if p == "" {
		return base
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// UnifyOptions converts the parse section to parser options
func (c *Config) UnifyOptions() unify.Options {
	return unify.Options{
		Root:            c.Parse.Root,
		SearchPaths:     append([]string(nil), c.Parse.SearchPaths...),
		NamespaceRefer:  c.Parse.NamespaceRefer,
		Cache:           c.Parse.Cache,
		IgnoreGoTag:     c.Parse.IgnoreGoTag,
		IgnoreGoTagDash: c.Parse.IgnoreGoTagDash,
		Concurrency:     c.Parse.Concurrency,
	}
}

// Overrides holds values given on the command line. Nil fields keep the file value.
type Overrides struct {
	Root            *string
	SearchPaths     []string
	NamespaceRefer  *bool
	Cache           *bool
	IgnoreGoTag     *bool
	IgnoreGoTagDash *bool
	Concurrency     *int
	Format          *string
	Pretty          *bool
	Entries         []string
}

// Merge applies command line overrides on top of the file configuration and
// validates the result
func (c *Config) Merge(o Overrides) error {
	if o.Root != nil {
		c.Parse.Root = absolute(cwd(), *o.Root)
	}
	if len(o.SearchPaths) > 0 {
		c.Parse.SearchPaths = make([]string, 0, len(o.SearchPaths))
		for _, p := range o.SearchPaths {
			c.Parse.SearchPaths = append(c.Parse.SearchPaths, absolute(cwd(), p))
		}
	}
	setBool(&c.Parse.NamespaceRefer, o.NamespaceRefer)
	setBool(&c.Parse.Cache, o.Cache)
	setBool(&c.Parse.IgnoreGoTag, o.IgnoreGoTag)
	setBool(&c.Parse.IgnoreGoTagDash, o.IgnoreGoTagDash)
	setBool(&c.Output.Pretty, o.Pretty)
	if o.Concurrency != nil {
		c.Parse.Concurrency = *o.Concurrency
	}
	if o.Format != nil {
		c.Output.Format = *o.Format
	}
	if len(o.Entries) > 0 {
		c.Entries = append([]string(nil), o.Entries...)
	}
	return NewValidator().Validate(c)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func cwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
