package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
	"github.com/jovezhong/claude-code-history-viewer/internal/pipeline"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Token usage per model",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
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
	summary := pipeline.GlobalSummary(rollups, 0, 0)

	if len(summary.ModelDistribution) == 0 {
		fmt.Println("\n  No assistant messages with model info found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MODEL DISTRIBUTION"))
	fmt.Println()

	rows := make([][]string, 0, len(summary.ModelDistribution))
	for _, m := range summary.ModelDistribution {
		rows = append(rows, []string{
			m.ModelName,
			cli.FormatNumber(int64(m.MessageCount)),
			cli.FormatTokens(m.InputTokens),
			cli.FormatTokens(m.OutputTokens),
			cli.FormatTokens(m.CacheCreationTokens + m.CacheReadTokens),
			cli.FormatTokens(m.TokenCount),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Messages", "Input", "Output", "Cache", "Total"},
		Rows:    rows,
	}))

	return nil
}
