package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/idlunify/internal/config"
	"github.com/standardbeagle/idlunify/internal/debug"
	idlerrors "github.com/standardbeagle/idlunify/internal/errors"
	"github.com/standardbeagle/idlunify/internal/loader"
	"github.com/standardbeagle/idlunify/internal/mcp"
	"github.com/standardbeagle/idlunify/internal/unify"
	"github.com/standardbeagle/idlunify/internal/watch"
	"github.com/standardbeagle/idlunify/pkg/pathutil"
)

// loadConfig reads the file configuration and applies the command line on top.
// Positional arguments replace the configured entries.
func loadConfig(c *cli.Context) (*config.Config, error) {
	dir := c.String("config-dir")
	if dir == "" {
		dir = c.String("root")
	}
	if dir == "" {
		dir = "."
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var o config.Overrides
	if c.IsSet("root") {
		root := c.String("root")
		o.Root = &root
	}
	o.SearchPaths = c.StringSlice("search-path")
	o.Cache = boolOverride(c, "cache")
	o.IgnoreGoTag = boolOverride(c, "ignore-go-tag")
	o.IgnoreGoTagDash = boolOverride(c, "ignore-go-tag-dash")
	o.Pretty = boolOverride(c, "pretty")
	if c.IsSet("no-namespace-refer") {
		refer := !c.Bool("no-namespace-refer")
		o.NamespaceRefer = &refer
	}
	if c.IsSet("concurrency") {
		n := c.Int("concurrency")
		o.Concurrency = &n
	}
	if c.IsSet("format") {
		format := c.String("format")
		o.Format = &format
	}
	o.Entries = c.Args().Slice()

	if err := cfg.Merge(o); err != nil {
		return nil, err
	}
	return cfg, nil
}

func boolOverride(c *cli.Context, name string) *bool {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Bool(name)
	return &v
}

func newParser(cfg *config.Config) (*unify.Parser, error) {
	cache, err := loader.NewDocumentCache(cfg.Cache.Size)
	if err != nil {
		return nil, err
	}
	return unify.NewParser(unify.WithCache(cache)), nil
}

func errNoEntries(cfg *config.Config) error {
	return fmt.Errorf("no entry files under %s: pass entry patterns or set entries in %s", cfg.Parse.Root, config.KDLFileName)
}

func parseCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	entries, err := pathutil.GlobFunc(cfg.Parse.Root, cfg.Entries, loader.IsIDL)
	if err != nil {
		return fmt.Errorf("failed to expand entries: %w", err)
	}
	if len(entries) == 0 {
		return errNoEntries(cfg)
	}

	parser, err := newParser(cfg)
	if err != nil {
		return err
	}
	opts := cfg.UnifyOptions()
	if c.Bool("explain") {
		opts.Trace = c.App.ErrWriter
	}

	start := time.Now()
	docs, err := parser.ParseAll(c.Context, entries, opts, nil)
	if err != nil {
		var multi *idlerrors.MultiError
		if errors.As(err, &multi) {
			for _, e := range multi.Errors {
				fmt.Fprintf(c.App.ErrWriter, "error: %v\n", e)
			}
			return fmt.Errorf("%d of %d entries failed", len(multi.Errors), len(entries))
		}
		return err
	}
	debug.LogUnify("parsed %d entries in %v\n", len(entries), time.Since(start))

	w := c.App.Writer
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if len(docs) == 1 {
		return writeOutput(w, docs[0], cfg.Output)
	}
	return writeOutput(w, docs, cfg.Output)
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if len(cfg.Entries) == 0 {
		return errNoEntries(cfg)
	}
	parser, err := newParser(cfg)
	if err != nil {
		return err
	}

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	if c.IsSet("debounce") {
		debounce = c.Duration("debounce")
	}

	w, err := watch.New(parser, watch.Config{
		Root:     cfg.Parse.Root,
		Entries:  cfg.Entries,
		Exclude:  cfg.Watch.Exclude,
		Debounce: debounce,
		Options:  cfg.UnifyOptions(),
	}, func(b watch.Batch) {
		reportBatch(c, cfg, b)
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Watching %s (entries: %v)", cfg.Parse.Root, cfg.Entries)
	return w.Run(ctx)
}

func reportBatch(c *cli.Context, cfg *config.Config, b watch.Batch) {
	if len(b.Changed) > 0 {
		log.Printf("Changed: %v", b.Changed)
	}
	if b.Err != nil {
		log.Printf("Parse failed after %v: %v", b.Duration, b.Err)
		return
	}
	if len(b.Entries) == 0 {
		log.Printf("No entry files match %v", cfg.Entries)
		return
	}

	var out interface{} = b.Documents
	if len(b.Documents) == 1 {
		out = b.Documents[0]
	}
	if err := writeOutput(c.App.Writer, out, cfg.Output); err != nil {
		log.Printf("Failed to write output: %v", err)
		return
	}
	log.Printf("Parsed %d entries in %v", len(b.Entries), b.Duration)
}

func mcpCommand(c *cli.Context) error {
	// Enable MCP mode to suppress all debug output
	debug.SetMCPMode(true)

	cfg, err := loadConfig(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}
	server, err := mcp.NewServer(cfg)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	debug.LogMCP("Starting MCP server with stdio transport...\n")
	if err := server.Start(ctx); err != nil && ctx.Err() == nil {
		return debug.Fatal("MCP server error: %v\n", err)
	}
	debug.LogMCP("Server shutdown completed\n")
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	source := cfg.Source
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(c.App.Writer, "# source: %s\n", source)
	return cfg.EncodeTOML(c.App.Writer)
}

func configValidateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		fmt.Fprintf(c.App.Writer, "Configuration validation failed: %v\n", err)
		return err
	}
	if cfg.Source == "" {
		fmt.Fprintf(c.App.Writer, "No configuration file found; defaults are valid\n")
		return nil
	}

	entries, err := pathutil.GlobFunc(cfg.Parse.Root, cfg.Entries, loader.IsIDL)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(c.App.Writer, "Warning: no entry files match %v\n", cfg.Entries)
	}
	for _, p := range cfg.Parse.SearchPaths {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			fmt.Fprintf(c.App.Writer, "Warning: search path %s is not a directory\n", p)
		}
	}
	fmt.Fprintf(c.App.Writer, "Configuration %s is valid (%d entries)\n", cfg.Source, len(entries))
	return nil
}
