package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stake-plus/df-blogs/src/api"
	"github.com/stake-plus/df-blogs/src/blogs"
)

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Follow or unfollow a blog or an account",
}

var followBlogCmd = &cobra.Command{
	Use:   "blog <id>",
	Short: "Follow a blog, or unfollow it if already followed",
	Args:  cobra.ExactArgs(1),
	RunE:  followBlog,
}

var followAccountCmd = &cobra.Command{
	Use:   "account <address>",
	Short: "Follow an account, or unfollow it if already followed",
	Args:  cobra.ExactArgs(1),
	RunE:  followAccount,
}

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Upvote or downvote a post or comment",
	Long: `Votes behave like buttons: pressing the kind you already voted removes the vote,
pressing the other kind switches it.`,
}

var votePostCmd = &cobra.Command{
	Use:   "post <id> <upvote|downvote>",
	Short: "Vote on a post",
	Args:  cobra.ExactArgs(2),
	RunE:  voteRun(blogs.TargetPost),
}

var voteCommentCmd = &cobra.Command{
	Use:   "comment <id> <upvote|downvote>",
	Short: "Vote on a comment",
	Args:  cobra.ExactArgs(2),
	RunE:  voteRun(blogs.TargetComment),
}

func init() {
	RootCmd.AddCommand(followCmd, voteCmd)
	followCmd.AddCommand(followBlogCmd, followAccountCmd)
	voteCmd.AddCommand(votePostCmd, voteCommentCmd)
}

func followBlog(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		return toggle(ctx, app.Widgets().FollowBlog(id).Toggle)
	})
}

func followAccount(cmd *cobra.Command, args []string) error {
	acc, err := blogs.ParseAccount(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		return toggle(ctx, app.Widgets().FollowAccount(acc).Toggle)
	})
}

func voteRun(target blogs.ReactionTarget) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		kind, err := blogs.ParseReactionKind(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *api.App) error {
			st, err := app.Widgets().Voter(target, id).Press(ctx, kind)
			if err != nil {
				return err
			}
			return show(st, func(w io.Writer) {
				mine := st.Mine()
				if mine == "" {
					mine = "none"
				}
				fmt.Fprintf(w, "Score %d (+%d/-%d), your vote: %s\n", st.Score, st.Upvotes, st.Downvotes, mine)
			})
		})
	}
}
