package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/cli"
	"github.com/jovezhong/claude-code-history-viewer/internal/transcript"
)

var (
	flagMsgOffset int
	flagMsgLimit  int
	flagMsgJSON   bool
)

var messagesCmd = &cobra.Command{
	Use:   "messages <session-id>",
	Short: "Show one page of a session's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessages,
}

func init() {
	messagesCmd.Flags().IntVar(&flagMsgOffset, "offset", 0, "Message offset")
	messagesCmd.Flags().IntVar(&flagMsgLimit, "limit", transcript.DefaultPageSize, "Page size")
	messagesCmd.Flags().BoolVar(&flagMsgJSON, "json", false, "Output JSON instead of text")
	rootCmd.AddCommand(messagesCmd)
}

func runMessages(_ *cobra.Command, args []string) error {
	sessionID := args[0]

	cfg := loadConfig()
	result, err := loadData(cfg)
	if err != nil {
		return err
	}

	var found *transcript.Result
	for _, r := range result.Sessions {
		if r.Session.SessionID == sessionID || strings.HasPrefix(r.Session.SessionID, sessionID) {
			found = r
			break
		}
	}
	if found == nil {
		return fmt.Errorf("unknown session: %s", sessionID)
	}

	page := transcript.Page(found.Messages, flagMsgOffset, flagMsgLimit)

	if flagMsgJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	fmt.Printf("\n  Session %s (%d messages, showing %d-%d)\n\n",
		found.Session.SessionID, page.TotalCount,
		flagMsgOffset+1, flagMsgOffset+len(page.Messages))

	for _, m := range page.Messages {
		label := m.Type
		if m.Model != nil {
			label += " (" + *m.Model + ")"
		}
		fmt.Printf("  %s  %s\n", cli.FormatTimestamp(m.Timestamp), label)

		var text string
		if err := json.Unmarshal(m.Content, &text); err == nil && text != "" {
			for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
				fmt.Printf("    %s\n", cli.Truncate(line, 100))
			}
		}
		fmt.Println()
	}

	if page.HasMore {
		fmt.Printf("  More messages available: --offset %d\n", page.NextOffset)
	}

	return nil
}
