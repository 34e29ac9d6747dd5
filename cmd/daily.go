package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily activity table",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}
	if len(result.Sessions) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	_, merged := globalRollup(result.Sessions, parseOptions(cfg))
	summary := merged.ProjectSummary("", 0)

	if len(summary.DailyStats) == 0 {
		fmt.Println("\n  No dated activity found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("DAILY ACTIVITY"))
	fmt.Println()

	rows := make([][]string, 0, len(summary.DailyStats))
	sparkVals := make([]float64, 0, len(summary.DailyStats))
	for _, d := range summary.DailyStats {
		weekday := ""
		if t, err := time.Parse("2006-01-02", d.Date); err == nil {
			weekday = cli.FormatDayOfWeek(int(t.Weekday()))
		}
		rows = append(rows, []string{
			d.Date,
			weekday,
			cli.FormatNumber(int64(d.SessionCount)),
			cli.FormatNumber(int64(d.MessageCount)),
			cli.FormatTokens(d.TotalTokens),
			cli.FormatNumber(int64(d.ActiveHours)),
		})
		sparkVals = append(sparkVals, float64(d.TotalTokens))
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Sessions", "Messages", "Tokens", "Hours"},
		Rows:    rows,
	}))
	fmt.Printf("\n  Tokens: %s\n", cli.RenderSparkline(sparkVals))

	return nil
}
