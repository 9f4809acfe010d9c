package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlFile mirrors the KDL layout. Pointers tell absent keys from zero values.
type tomlFile struct {
	Parse struct {
		Root            *string  `toml:"root"`
		SearchPaths     []string `toml:"search_paths"`
		NamespaceRefer  *bool    `toml:"namespace_refer"`
		Cache           *bool    `toml:"cache"`
		IgnoreGoTag     *bool    `toml:"ignore_go_tag"`
		IgnoreGoTagDash *bool    `toml:"ignore_go_tag_dash"`
		Concurrency     *int     `toml:"concurrency"`
	} `toml:"parse"`
	Cache struct {
		Size *int `toml:"size"`
	} `toml:"cache"`
	Watch struct {
		DebounceMs *int     `toml:"debounce_ms"`
		Exclude    []string `toml:"exclude"`
	} `toml:"watch"`
	Output struct {
		Format *string `toml:"format"`
		Pretty *bool   `toml:"pretty"`
	} `toml:"output"`
	Entries []string `toml:"entries"`
}

// LoadTOML reads idlunify.toml from dir. It returns nil without error when the
// file does not exist.
func LoadTOML(dir string) (*Config, error) {
	tomlPath := filepath.Join(dir, TOMLFileName)

	data, err := os.ReadFile(tomlPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", TOMLFileName, err)
	}

	cfg, err := parseTOML(data)
	if err != nil {
		return nil, err
	}
	cfg.Source = tomlPath
	return cfg, nil
}

func parseTOML(data []byte) (*Config, error) {
	var f tomlFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg := Default()
	if f.Parse.Root != nil {
		cfg.Parse.Root = *f.Parse.Root
	}
	cfg.Parse.SearchPaths = append(cfg.Parse.SearchPaths, f.Parse.SearchPaths...)
	setBool(&cfg.Parse.NamespaceRefer, f.Parse.NamespaceRefer)
	setBool(&cfg.Parse.Cache, f.Parse.Cache)
	setBool(&cfg.Parse.IgnoreGoTag, f.Parse.IgnoreGoTag)
	setBool(&cfg.Parse.IgnoreGoTagDash, f.Parse.IgnoreGoTagDash)
	if f.Parse.Concurrency != nil {
		cfg.Parse.Concurrency = *f.Parse.Concurrency
	}
	if f.Cache.Size != nil {
		cfg.Cache.Size = *f.Cache.Size
	}
	if f.Watch.DebounceMs != nil {
		cfg.Watch.DebounceMs = *f.Watch.DebounceMs
	}
	cfg.Watch.Exclude = append(cfg.Watch.Exclude, f.Watch.Exclude...)
	if f.Output.Format != nil {
		cfg.Output.Format = *f.Output.Format
	}
	setBool(&cfg.Output.Pretty, f.Output.Pretty)
	cfg.Entries = append(cfg.Entries, f.Entries...)
	return cfg, nil
}

// EncodeTOML writes the effective configuration in idlunify.toml form
func (c *Config) EncodeTOML(w io.Writer) error {
	var f tomlFile
	f.Parse.Root = &c.Parse.Root
	f.Parse.SearchPaths = nonNil(c.Parse.SearchPaths)
	f.Parse.NamespaceRefer = &c.Parse.NamespaceRefer
	f.Parse.Cache = &c.Parse.Cache
	f.Parse.IgnoreGoTag = &c.Parse.IgnoreGoTag
	f.Parse.IgnoreGoTagDash = &c.Parse.IgnoreGoTagDash
	f.Parse.Concurrency = &c.Parse.Concurrency
	f.Cache.Size = &c.Cache.Size
	f.Watch.DebounceMs = &c.Watch.DebounceMs
	f.Watch.Exclude = nonNil(c.Watch.Exclude)
	f.Output.Format = &c.Output.Format
	f.Output.Pretty = &c.Output.Pretty
	f.Entries = nonNil(c.Entries)

	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to encode TOML config: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
