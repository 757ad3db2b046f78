package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stake-plus/df-blogs/src/api"
	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/forms"
	"github.com/stake-plus/df-blogs/src/views"
	"github.com/stake-plus/df-blogs/src/widgets"
)

var postCmd = &cobra.Command{
	Use:     "post",
	Aliases: []string{"posts", "p"},
	Short:   "View, write and share posts",
}

var postViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE:  postView,
}

var postListCmd = &cobra.Command{
	Use:   "list <blog-id>",
	Short: "List the posts of a blog",
	Args:  cobra.ExactArgs(1),
	RunE:  postList,
}

var postCreateCmd = &cobra.Command{
	Use:   "create <blog-id>",
	Short: "Write a post in a blog",
	Args:  cobra.ExactArgs(1),
	RunE:  postCreate,
}

var postUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a post; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE:  postUpdate,
}

var postShareCmd = &cobra.Command{
	Use:   "share <id>",
	Short: "Share or unshare a post; with --blog, repost it into one of your blogs",
	Args:  cobra.ExactArgs(1),
	RunE:  postShare,
}

var postReactionsCmd = &cobra.Command{
	Use:   "reactions <id>",
	Short: "List the votes on a post",
	Args:  cobra.ExactArgs(1),
	RunE:  reactionsRun(blogs.TargetPost),
}

var (
	postViewMode *string
	postListMode *string
	postForm     forms.PostForm
	shareBlogID  uint64
	shareNote    string
)

func init() {
	RootCmd.AddCommand(postCmd)
	postCmd.AddCommand(postViewCmd, postListCmd, postCreateCmd, postUpdateCmd, postShareCmd, postReactionsCmd)

	postViewMode = addModeFlag(postViewCmd, views.Detail)
	postListMode = addModeFlag(postListCmd, views.Preview)

	for _, c := range []*cobra.Command{postCreateCmd, postUpdateCmd} {
		c.Flags().StringVar(&postForm.Slug, "slug", "", "URL slug")
		c.Flags().StringVar(&postForm.Title, "title", "", "Title")
		c.Flags().StringVar(&postForm.Body, "body", "", "Body (markdown)")
		c.Flags().StringVar(&postForm.Image, "image", "", "Image URL")
		c.Flags().StringSliceVar(&postForm.Tags, "tags", nil, "Comma-separated tags")
	}
	_ = postCreateCmd.MarkFlagRequired("title")
	_ = postCreateCmd.MarkFlagRequired("body")

	postShareCmd.Flags().Uint64Var(&shareBlogID, "blog", 0, "Repost into this blog")
	postShareCmd.Flags().StringVar(&shareNote, "note", "", "Text to add to the repost")
}

func postView(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	mode, err := views.ParseMode(*postViewMode)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		p, err := app.Pages().Post(ctx, id, mode, app.Viewer())
		if err != nil {
			return err
		}
		return show(p, func(w io.Writer) { renderPost(w, p) })
	})
}

func postList(cmd *cobra.Command, args []string) error {
	blogID, err := parseID(args[0])
	if err != nil {
		return err
	}
	mode, err := views.ParseMode(*postListMode)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		list, err := app.Pages().BlogPosts(ctx, blogID, mode, app.Viewer())
		if err != nil {
			return err
		}
		return show(list, func(w io.Writer) { renderPosts(w, list) })
	})
}

func postCreate(cmd *cobra.Command, args []string) error {
	blogID, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		c, err := app.Committer()
		if err != nil {
			return err
		}
		b, err := blogs.GetBlog(ctx, app.Chain, blogID)
		if err != nil {
			return err
		}
		if b == nil {
			return errNotFound("blog", args[0])
		}
		o, err := c.CreatePost(ctx, blogID, postForm)
		if err != nil {
			return err
		}
		return printOutcome("Created", o)
	})
}

func postUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		c, err := app.Committer()
		if err != nil {
			return err
		}
		p, err := blogs.GetPost(ctx, app.Chain, id)
		if err != nil {
			return err
		}
		if p == nil {
			return errNotFound("post", args[0])
		}
		content, err := contentOf[blogs.PostContent](ctx, app.Store, p.IpfsHash)
		if err != nil {
			return err
		}

		f := forms.PostFormOf(*p, content)
		flags := cmd.Flags()
		override(flags.Changed("slug"), &f.Slug, postForm.Slug)
		override(flags.Changed("title"), &f.Title, postForm.Title)
		override(flags.Changed("body"), &f.Body, postForm.Body)
		override(flags.Changed("image"), &f.Image, postForm.Image)
		override(flags.Changed("tags"), &f.Tags, postForm.Tags)

		o, err := c.UpdatePost(ctx, *p, content, f)
		if err != nil {
			return err
		}
		return printOutcome("Updated", o)
	})
}

func postShare(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		if shareBlogID == 0 {
			return toggle(ctx, app.Widgets().SharePost(id).Toggle)
		}
		c, err := app.Committer()
		if err != nil {
			return err
		}
		o, err := c.NewSharedPost(ctx, shareBlogID, id, shareNote)
		if err != nil {
			return err
		}
		return printOutcome("Shared", o)
	})
}

func reactionsRun(target blogs.ReactionTarget) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, app *api.App) error {
			list, err := app.Pages().Reactions(ctx, target, id, app.Viewer())
			if err != nil {
				return err
			}
			return show(list, func(w io.Writer) {
				table := newTable(w, "Account", "Vote", "When")
				for _, r := range list {
					table.Append([]string{r.Account, r.Kind, changeText(&r.Created)})
				}
				table.Render()
			})
		})
	}
}

// toggle flips a follow or share and prints the new state.
func toggle(ctx context.Context, flip func(context.Context) (widgets.ToggleState, error)) error {
	st, err := flip(ctx)
	if err != nil {
		return err
	}
	return show(st, func(w io.Writer) {
		state := color.YellowString("inactive")
		if st.Active {
			state = color.GreenString("active")
		}
		fmt.Fprintf(w, "Now %s; next action: %s\n", state, st.Label)
	})
}
