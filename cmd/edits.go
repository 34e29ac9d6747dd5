package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

var (
	flagEditsLimit int
	flagEditsJSON  bool
)

var editsCmd = &cobra.Command{
	Use:   "edits",
	Short: "Recently edited files, recovered from tool results",
	RunE:  runEdits,
}

func init() {
	editsCmd.Flags().IntVarP(&flagEditsLimit, "limit", "l", 20, "Maximum edits to show")
	editsCmd.Flags().BoolVar(&flagEditsJSON, "json", false, "Output JSON instead of a table")
	rootCmd.AddCommand(editsCmd)
}

func runEdits(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}

	edits := transcript.RecentEdits(filterResults(result.Sessions), flagEditsLimit)

	if flagEditsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(edits)
	}

	if len(edits.Files) == 0 {
		fmt.Println("\n  No file edits found.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("RECENT FILE EDITS"))
	fmt.Println()

	rows := make([][]string, 0, len(edits.Files))
	for _, e := range edits.Files {
		rows = append(rows, []string{
			cli.Truncate(e.FilePath, 60),
			e.OperationType,
			fmt.Sprintf("+%d/-%d", e.LinesAdded, e.LinesRemoved),
			cli.FormatTimestamp(e.Timestamp),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"File", "Op", "Lines", "When"},
		Rows:    rows,
	}))
	fmt.Printf("\n  %d edits across %d files\n", edits.TotalEditsCount, edits.UniqueFilesCount)

	return nil
}
