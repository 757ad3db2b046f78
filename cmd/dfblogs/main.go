// Command dfblogs reads and writes blogs, posts, comments and profiles on a blogs-enabled
// Substrate chain. It also runs the HTTP gateway and the Discord notification relay.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/api"
	"github.com/stake-plus/df-blogs/src/api/config"
	"github.com/stake-plus/df-blogs/src/logging"
)

var (
	cfg      config.Config
	jsonOut  bool
	logLevel string
)

var RootCmd = &cobra.Command{
	Use:           "dfblogs",
	Short:         "Decentralized blogs on a Substrate chain",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logging.Init(cfg.LogLevel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// withApp opens the app for the duration of run. The context ends on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, run func(ctx context.Context, app *api.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := api.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return run(ctx, app)
}
