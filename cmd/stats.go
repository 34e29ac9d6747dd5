package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
	"github.com/jovezhong/claude-code-history-viewer/internal/model"
	"github.com/jovezhong/claude-code-history-viewer/internal/pipeline"
)

var flagStatsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Usage summary across all projects",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&flagStatsJSON, "json", false, "Output JSON instead of a table")
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}
	if len(result.Sessions) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	rollups, _ := globalRollup(result.Sessions, parseOptions(cfg))

	if flagProject != "" {
		rollup, ok := rollups[flagProject]
		if !ok {
			return fmt.Errorf("unknown project: %s", flagProject)
		}
		return renderProjectStats(rollup.ProjectSummary(flagProject, cfg.General.TopTools))
	}

	summary := pipeline.GlobalSummary(rollups, cfg.General.TopTools, cfg.General.TopProjects)

	if flagStatsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("USAGE SUMMARY"))
	fmt.Println()

	overview := [][]string{
		{"Projects", cli.FormatNumber(int64(summary.TotalProjects))},
		{"Sessions", cli.FormatNumber(int64(summary.TotalSessions))},
		{"Messages", cli.FormatNumber(int64(summary.TotalMessages))},
		{"Tokens", cli.FormatTokens(summary.TotalTokens)},
		{"Session time", cli.FormatDuration(summary.TotalSessionDurationMinutes * 60)},
	}
	if summary.DateRange.FirstMessage != nil && summary.DateRange.LastMessage != nil {
		overview = append(overview, []string{
			"Active span",
			fmt.Sprintf("%s (%d days)",
				cli.FormatTimestamp(*summary.DateRange.FirstMessage), summary.DateRange.DaysSpan),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{Title: "Overview", Rows: overview}))
	fmt.Println()

	dist := summary.TokenDistribution
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Token Distribution",
		Headers: []string{"Category", "Tokens"},
		Rows: [][]string{
			{"Input", cli.FormatTokens(dist.Input)},
			{"Output", cli.FormatTokens(dist.Output)},
			{"Cache creation", cli.FormatTokens(dist.CacheCreation)},
			{"Cache read", cli.FormatTokens(dist.CacheRead)},
			{"---"},
			{"Total", cli.FormatTokens(dist.Total())},
		},
	}))

	if len(summary.TopProjects) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(summary.TopProjects))
		for _, p := range summary.TopProjects {
			rows = append(rows, []string{
				cli.Truncate(p.ProjectName, 40),
				cli.FormatNumber(int64(p.Sessions)),
				cli.FormatNumber(int64(p.Messages)),
				cli.FormatTokens(p.Tokens),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Top Projects",
			Headers: []string{"Project", "Sessions", "Messages", "Tokens"},
			Rows:    rows,
		}))
	}

	return nil
}

func renderProjectStats(summary model.ProjectStatsSummary) error {
	if flagStatsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECT  " + cli.Truncate(summary.ProjectName, 40)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title: "Overview",
		Rows: [][]string{
			{"Sessions", cli.FormatNumber(int64(summary.TotalSessions))},
			{"Messages", cli.FormatNumber(int64(summary.TotalMessages))},
			{"Tokens", cli.FormatTokens(summary.TotalTokens)},
			{"Avg tokens/session", cli.FormatTokens(summary.AvgTokensPerSession)},
			{"Avg session length", cli.FormatDuration(summary.AvgSessionDuration)},
			{"Total session time", cli.FormatDuration(summary.TotalSessionDuration)},
			{"Most active hour", fmt.Sprintf("%02d:00", summary.MostActiveHour)},
		},
	}))

	if len(summary.MostUsedTools) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(summary.MostUsedTools))
		for _, t := range summary.MostUsedTools {
			avg := "-"
			if t.AvgExecutionTime != nil {
				avg = fmt.Sprintf("%.0fms", *t.AvgExecutionTime)
			}
			rows = append(rows, []string{
				t.ToolName,
				cli.FormatNumber(t.UsageCount),
				cli.FormatPercent(t.SuccessRate),
				avg,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Most Used Tools",
			Headers: []string{"Tool", "Uses", "Success", "Avg Time"},
			Rows:    rows,
		}))
	}

	return nil
}
