package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
)

var flagSessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions, newest first",
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().IntVarP(&flagSessionsLimit, "limit", "l", 25, "Maximum sessions to show")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()
	entries, err := loadIndex(cfg)
	if err != nil {
		return err
	}

	entries = filterEntries(entries)
	if len(entries) == 0 {
		fmt.Println("\n  No sessions found.")
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Session.LastMessageTime > entries[j].Session.LastMessageTime
	})
	if flagSessionsLimit > 0 && len(entries) > flagSessionsLimit {
		entries = entries[:flagSessionsLimit]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SESSIONS"))
	fmt.Println()

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		s := e.Session
		summary := ""
		if s.Summary != nil {
			summary = cli.Truncate(*s.Summary, 38)
		}
		flags := ""
		if s.HasToolUse {
			flags += "T"
		}
		if s.HasErrors {
			flags += "E"
		}
		rows = append(rows, []string{
			shortSessionID(s.SessionID),
			cli.Truncate(s.ProjectName, 28),
			summary,
			cli.FormatNumber(int64(s.MessageCount)),
			cli.FormatTokens(e.Stats.TotalTokens),
			cli.FormatTimestamp(s.LastMessageTime),
			flags,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Session", "Project", "Summary", "Msgs", "Tokens", "Last Active", ""},
		Rows:    rows,
	}))

	return nil
}

func shortSessionID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
