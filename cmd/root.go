package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
	"github.com/jovezhong/claude-code-history-viewer/internal/config"
	"github.com/jovezhong/claude-code-history-viewer/internal/pipeline"
	"github.com/jovezhong/claude-code-history-viewer/internal/store"
	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

var (
	flagDataDir           string
	flagProject           string
	flagQuiet             bool
	flagNoCache           bool
	flagDropUntimestamped bool
)

var rootCmd = &cobra.Command{
	Use:   "cchv",
	Short: "Claude Code history viewer",
	Long:  "Browse and analyze Claude Code session history: messages, tokens, tools, and per-project statistics.",
	RunE:  runStats,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Claude data directory (default ~/.claude)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Filter to a project name")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVar(&flagDropUntimestamped, "drop-untimestamped", false, "Drop records without a timestamp")
}

// loadConfig reads the config file, falling back to defaults on error.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  %s\n", cli.RenderMuted("config unreadable, using defaults"))
		}
		return config.DefaultConfig()
	}
	return cfg
}

// dataDir resolves the data directory: flag first, then config, then ~/.claude.
func dataDir(cfg config.Config) string {
	if flagDataDir != "" {
		return flagDataDir
	}
	return config.DataDir(cfg)
}

// parseOptions builds transcript options from config and flags.
func parseOptions(cfg config.Config) transcript.Options {
	opts := transcript.Options{ToolError: transcript.DefaultToolError}
	if flagDropUntimestamped || cfg.General.TimestampPolicy == "drop" {
		opts.Timestamps = transcript.DropUntimestamped
	}
	return opts
}

func progressFn(current, total int) {
	if flagQuiet {
		return
	}
	if current%100 == 0 || current == total {
		fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
	}
}

// loadData does a full parse of every session file, messages included.
func loadData(cfg config.Config) (*pipeline.LoadResult, error) {
	result, err := pipeline.Load(dataDir(cfg), parseOptions(cfg), progressFn)
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s sessions across %d projects    \n",
			cli.FormatNumber(int64(result.ParsedFiles)),
			result.ProjectCount,
		)
	}

	return result, nil
}

// loadIndex returns the fast session index, cache-assisted unless --no-cache.
func loadIndex(cfg config.Config) ([]store.Entry, error) {
	opts := parseOptions(cfg)

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()

			ir, err := pipeline.LoadIndex(dataDir(cfg), opts, cache, progressFn)
			if err == nil {
				if !flagQuiet && ir.TotalFiles > 0 {
					fmt.Fprintf(os.Stderr, "\r  %s cached + %d reparsed (%d projects)    \n",
						cli.FormatNumber(int64(ir.CacheHits)), ir.Reparsed, ir.ProjectCount)
				}
				return ir.Entries, nil
			}
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "\n  Cache error, falling back to full parse\n")
			}
		} else if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
		}
	}

	result, err := loadData(cfg)
	if err != nil {
		return nil, err
	}

	entries := make([]store.Entry, 0, len(result.Sessions))
	for _, r := range result.Sessions {
		entries = append(entries, store.Entry{Session: r.Session, Stats: r.Stats})
	}
	return entries, nil
}

// filterResults applies the --project filter to fully parsed sessions.
func filterResults(results []*transcript.Result) []*transcript.Result {
	if flagProject == "" {
		return results
	}
	filtered := make([]*transcript.Result, 0, len(results))
	for _, r := range results {
		if r.Session.ProjectName == flagProject {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// filterEntries applies the --project filter to index entries.
func filterEntries(entries []store.Entry) []store.Entry {
	if flagProject == "" {
		return entries
	}
	filtered := make([]store.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Session.ProjectName == flagProject {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// globalRollup merges per-project rollups, honoring --project.
func globalRollup(results []*transcript.Result, opts transcript.Options) (map[string]*pipeline.Rollup, *pipeline.Rollup) {
	rollups := pipeline.ProjectRollups(filterResults(results), opts.ToolError)
	merged := pipeline.NewRollup()
	merged.ToolError = opts.ToolError
	for _, r := range rollups {
		merged.Merge(r)
	}
	return rollups, merged
}
