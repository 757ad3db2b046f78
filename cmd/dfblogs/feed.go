package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/stake-plus/df-blogs/src/api"
)

var feedCmd = &cobra.Command{
	Use:   "feed [address]",
	Short: "Show the news feed of an account, the signer's by default",
	Args:  cobra.MaximumNArgs(1),
	RunE:  feed,
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications [address]",
	Aliases: []string{"notifs"},
	Short:   "Show what others did that concerns an account",
	Args:    cobra.MaximumNArgs(1),
	RunE:    notifications,
}

var (
	pageOffset int
	pageCount  int
)

func init() {
	RootCmd.AddCommand(feedCmd, notificationsCmd)
	for _, c := range []*cobra.Command{feedCmd, notificationsCmd} {
		c.Flags().IntVar(&pageOffset, "offset", 0, "Skip this many records")
		c.Flags().IntVar(&pageCount, "count", 0, "Page size (default FEED_COUNT)")
	}
}

func count() int {
	if pageCount > 0 {
		return pageCount
	}
	return cfg.FeedCount
}

func feed(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		acc, err := accountArg(app, args)
		if err != nil {
			return err
		}
		posts, err := app.Pages().Feed(ctx, acc, pageOffset, count(), app.Viewer())
		if err != nil {
			return err
		}
		return show(posts, func(w io.Writer) { renderPosts(w, posts) })
	})
}

func notifications(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		acc, err := accountArg(app, args)
		if err != nil {
			return err
		}
		list, err := app.Pages().Notifications(ctx, acc, pageOffset, count(), app.Viewer())
		if err != nil {
			return err
		}
		return show(list, func(w io.Writer) { renderActivities(w, list) })
	})
}
