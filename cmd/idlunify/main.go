package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/idlunify/internal/debug"
	"github.com/standardbeagle/idlunify/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   version.Name,
		Usage:                  "Unify Thrift and Protobuf IDL into one resolved document model",
		Version:                version.FullInfo(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Aliases: []string{"C"},
				Usage:   "Directory holding .idlunify.kdl or idlunify.toml (default: --root, else the current directory)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory logical paths are resolved against",
			},
			&cli.StringSliceFlag{
				Name:    "search-path",
				Aliases: []string{"I"},
				Usage:   "Directory tried after root when an include is not found (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logs to a file in the temp directory",
			},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool("debug") {
				return nil
			}
			debug.EnableDebug = "true"
			path, err := debug.InitDebugLogFile()
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.ErrWriter, "Debug log: %s\n", path)
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:      "parse",
				Aliases:   []string{"p"},
				Usage:     "Parse entry files and print their unified documents",
				ArgsUsage: "[entry patterns...]",
				Flags: append(parseFlags(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the result to a file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Print the symbol resolution report of every entry to stderr",
					},
				),
				Action: parseCommand,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "Re-parse entry files whenever an IDL source under the root changes",
				ArgsUsage: "[entry patterns...]",
				Flags: append(parseFlags(),
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a burst of changes is parsed (default: watch.debounce_ms)",
					},
				),
				Action: watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the parse tools over the Model Context Protocol on stdio",
				Flags:  parseFlags(),
				Action: mcpCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management",
				Subcommands: []*cli.Command{
					{
						Name:    "show",
						Aliases: []string{"s"},
						Usage:   "Show the effective configuration as TOML",
						Action:  configShowCommand,
					},
					{
						Name:    "validate",
						Aliases: []string{"v"},
						Usage:   "Validate the configuration file",
						Action:  configValidateCommand,
					},
				},
			},
		},
	}
}

// parseFlags are shared by every command that parses
func parseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: json, yaml (default: output.format)",
		},
		&cli.BoolFlag{
			Name:    "pretty",
			Aliases: []string{"p"},
			Usage:   "Indent JSON output",
		},
		&cli.BoolFlag{
			Name:  "cache",
			Usage: "Reuse documents parsed earlier in the same process",
		},
		&cli.BoolFlag{
			Name:  "no-namespace-refer",
			Usage: "Leave namespace values of Thrift identifiers empty",
		},
		&cli.BoolFlag{
			Name:  "ignore-go-tag",
			Usage: "Skip go.tag struct-tag annotations",
		},
		&cli.BoolFlag{
			Name:  "ignore-go-tag-dash",
			Usage: "Keep fields tagged json:\"-\"",
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Aliases: []string{"j"},
			Usage:   "Entries parsed at the same time (default: parse.concurrency)",
		},
	}
}
