package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/stake-plus/df-blogs/src/api"
	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/forms"
	"github.com/stake-plus/df-blogs/src/views"
)

var commentCmd = &cobra.Command{
	Use:     "comment",
	Aliases: []string{"comments", "c"},
	Short:   "View and write comments",
}

var commentViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a comment",
	Args:  cobra.ExactArgs(1),
	RunE:  commentView,
}

var commentListCmd = &cobra.Command{
	Use:   "list <post-id>",
	Short: "Show the comment tree of a post",
	Args:  cobra.ExactArgs(1),
	RunE:  commentList,
}

var commentCreateCmd = &cobra.Command{
	Use:   "create <post-id>",
	Short: "Comment on a post, or reply with --parent",
	Args:  cobra.ExactArgs(1),
	RunE:  commentCreate,
}

var commentUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a comment",
	Args:  cobra.ExactArgs(1),
	RunE:  commentUpdate,
}

var commentShareCmd = &cobra.Command{
	Use:   "share <id>",
	Short: "Share or unshare a comment",
	Args:  cobra.ExactArgs(1),
	RunE:  commentShare,
}

var commentReactionsCmd = &cobra.Command{
	Use:   "reactions <id>",
	Short: "List the votes on a comment",
	Args:  cobra.ExactArgs(1),
	RunE:  reactionsRun(blogs.TargetComment),
}

var (
	commentViewMode *string
	commentForm     forms.CommentForm
	commentParent   uint64
)

func init() {
	RootCmd.AddCommand(commentCmd)
	commentCmd.AddCommand(commentViewCmd, commentListCmd, commentCreateCmd, commentUpdateCmd, commentShareCmd, commentReactionsCmd)

	commentViewMode = addModeFlag(commentViewCmd, views.Detail)

	for _, c := range []*cobra.Command{commentCreateCmd, commentUpdateCmd} {
		c.Flags().StringVar(&commentForm.Body, "body", "", "Comment text (markdown)")
		_ = c.MarkFlagRequired("body")
	}
	commentCreateCmd.Flags().Uint64Var(&commentParent, "parent", 0, "Reply to this comment")
}

func commentView(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	mode, err := views.ParseMode(*commentViewMode)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		c, err := app.Pages().Comment(ctx, id, mode, app.Viewer())
		if err != nil {
			return err
		}
		return show(c, func(w io.Writer) { renderComment(w, c) })
	})
}

func commentList(cmd *cobra.Command, args []string) error {
	postID, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		tree, err := app.Pages().PostComments(ctx, postID, app.Viewer())
		if err != nil {
			return err
		}
		return show(tree, func(w io.Writer) { renderCommentTree(w, tree, 0) })
	})
}

func commentCreate(cmd *cobra.Command, args []string) error {
	postID, err := parseID(args[0])
	if err != nil {
		return err
	}
	var parent *uint64
	if cmd.Flags().Changed("parent") {
		parent = &commentParent
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		c, err := app.Committer()
		if err != nil {
			return err
		}
		p, err := blogs.GetPost(ctx, app.Chain, postID)
		if err != nil {
			return err
		}
		if p == nil {
			return errNotFound("post", args[0])
		}
		o, err := c.CreateComment(ctx, postID, parent, commentForm)
		if err != nil {
			return err
		}
		return printOutcome("Commented", o)
	})
}

func commentUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		c, err := app.Committer()
		if err != nil {
			return err
		}
		cm, err := blogs.GetComment(ctx, app.Chain, id)
		if err != nil {
			return err
		}
		if cm == nil {
			return errNotFound("comment", args[0])
		}
		content, err := contentOf[blogs.CommentContent](ctx, app.Store, cm.IpfsHash)
		if err != nil {
			return err
		}
		o, err := c.UpdateComment(ctx, *cm, content, commentForm)
		if err != nil {
			return err
		}
		return printOutcome("Updated", o)
	})
}

func commentShare(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		return toggle(ctx, app.Widgets().ShareComment(id).Toggle)
	})
}
