package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/config"
	"github.com/jovezhong/claude-code-history-viewer/internal/pipeline"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := loadConfig()

	fmt.Printf("# %s", config.ConfigPath())
	if !config.Exists() {
		fmt.Print(" (not created yet, showing defaults)")
	}
	fmt.Println()
	fmt.Printf("# cache: %s\n\n", pipeline.CachePath())

	enc := toml.NewEncoder(os.Stdout)
	return enc.Encode(cfg)
}
