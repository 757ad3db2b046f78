package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stake-plus/df-blogs/src/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *api.App) error {
			return app.Serve(ctx)
		})
	},
}

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Post new notifications of an account to a Discord channel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *api.App) error {
			r, err := app.Relay()
			if err != nil {
				return err
			}
			return r.Run(ctx)
		})
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove uploads whose transaction never completed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *api.App) error {
			n, err := app.Sweep(ctx)
			if err != nil {
				return err
			}
			return show(map[string]int{"removed": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed %d stale uploads\n", n)
			})
		})
	},
}

func init() {
	RootCmd.AddCommand(serveCmd, relayCmd, sweepCmd)
}
