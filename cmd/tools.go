package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
)

var flagToolsLimit int

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Tool usage statistics",
	RunE:  runTools,
}

func init() {
	toolsCmd.Flags().IntVarP(&flagToolsLimit, "limit", "l", 20, "Maximum tools to show")
	rootCmd.AddCommand(toolsCmd)
}

func runTools(_ *cobra.Command, _ []string) error {
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
	tools := merged.ProjectSummary("", flagToolsLimit).MostUsedTools

	if len(tools) == 0 {
		fmt.Println("\n  No tool invocations found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("TOOL USAGE"))
	fmt.Println()

	var maxUses int64
	for _, t := range tools {
		if t.UsageCount > maxUses {
			maxUses = t.UsageCount
		}
	}

	rows := make([][]string, 0, len(tools))
	for _, t := range tools {
		avg := "-"
		if t.AvgExecutionTime != nil {
			avg = fmt.Sprintf("%.0fms", *t.AvgExecutionTime)
		}
		rows = append(rows, []string{
			t.ToolName,
			cli.RenderHorizontalBar(float64(t.UsageCount), float64(maxUses), 20),
			cli.FormatNumber(t.UsageCount),
			cli.FormatPercent(t.SuccessRate),
			avg,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Tool", "", "Uses", "Success", "Avg Time"},
		Rows:    rows,
	}))

	return nil
}
