package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jovezhong/claude-code-history-viewer/internal/server"
)

var (
	flagServeAddr     string
	flagServeInterval int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().IntVar(&flagServeInterval, "refresh", 30, "Refresh interval in seconds")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	addr := flagServeAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	logger := log.New(cmd.ErrOrStderr())
	logger.SetPrefix("api")

	svc := server.New(server.Config{
		DataDir:     dataDir(cfg),
		Addr:        addr,
		Interval:    time.Duration(flagServeInterval) * time.Second,
		TopTools:    cfg.General.TopTools,
		TopProjects: cfg.General.TopProjects,
		Options:     parseOptions(cfg),
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("listening", "addr", addr)
	return svc.Run(ctx)
}
