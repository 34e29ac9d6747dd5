package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	claudeDir := cfg.General.ClaudeDir
	timestampPolicy := cfg.General.TimestampPolicy
	if timestampPolicy == "" {
		timestampPolicy = "keep"
	}
	topTools := strconv.Itoa(cfg.General.TopTools)
	addr := cfg.Server.Addr

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Claude data directory").
				Description("Leave blank to use ~/.claude").
				Value(&claudeDir),

			huh.NewSelect[string]().
				Title("Records without a timestamp").
				Options(
					huh.NewOption("Keep them (counted, excluded from time stats)", "keep"),
					huh.NewOption("Drop them", "drop"),
				).
				Value(&timestampPolicy),

			huh.NewInput().
				Title("Tools shown in rankings").
				Value(&topTools).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),

			huh.NewInput().
				Title("API listen address").
				Value(&addr),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.General.ClaudeDir = claudeDir
	cfg.General.TimestampPolicy = timestampPolicy
	if n, err := strconv.Atoi(topTools); err == nil {
		cfg.General.TopTools = n
	}
	cfg.Server.Addr = addr

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("Saved to %s\n", config.ConfigPath())
	return nil
}
