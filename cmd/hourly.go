package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
)

var hourlyCmd = &cobra.Command{
	Use:   "hourly",
	Short: "Hour-of-day / day-of-week activity heatmap",
	RunE:  runHourly,
}

func init() {
	rootCmd.AddCommand(hourlyCmd)
}

func runHourly(_ *cobra.Command, _ []string) error {
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

	if len(summary.ActivityHeatmap) == 0 {
		fmt.Println("\n  No dated activity found.")
		return nil
	}

	var cells [7][24]int64
	var maxCount int64
	for _, cell := range summary.ActivityHeatmap {
		cells[cell.Day][cell.Hour] = cell.ActivityCount
		if cell.ActivityCount > maxCount {
			maxCount = cell.ActivityCount
		}
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("ACTIVITY HEATMAP (UTC)"))
	fmt.Println()

	var header strings.Builder
	header.WriteString("      ")
	for h := 0; h < 24; h += 3 {
		header.WriteString(fmt.Sprintf("%-6s", fmt.Sprintf("%02d", h)))
	}
	fmt.Println(header.String())

	for day := 0; day < 7; day++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("  %s ", cli.FormatDayOfWeek(day)))
		for hour := 0; hour < 24; hour++ {
			intensity := 0.0
			if maxCount > 0 {
				intensity = float64(cells[day][hour]) / float64(maxCount)
			}
			row.WriteString(cli.RenderHeatCell(intensity))
		}
		fmt.Println(row.String())
	}

	fmt.Printf("\n  Peak hour: %02d:00\n", summary.MostActiveHour)

	return nil
}
