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

var blogCmd = &cobra.Command{
	Use:     "blog",
	Aliases: []string{"blogs", "b"},
	Short:   "View and edit blogs",
}

var blogViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a blog and its posts",
	Args:  cobra.ExactArgs(1),
	RunE:  blogView,
}

var blogListCmd = &cobra.Command{
	Use:   "list [address]",
	Short: "List all blogs, or the blogs owned by an account",
	Args:  cobra.MaximumNArgs(1),
	RunE:  blogList,
}

var blogFollowersCmd = &cobra.Command{
	Use:   "followers <id>",
	Short: "List the followers of a blog",
	Args:  cobra.ExactArgs(1),
	RunE:  blogFollowers,
}

var blogCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a blog",
	Args:  cobra.NoArgs,
	RunE:  blogCreate,
}

var blogUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a blog; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE:  blogUpdate,
}

var (
	blogViewMode *string
	blogListMode *string
	blogForm     forms.BlogForm
)

func init() {
	RootCmd.AddCommand(blogCmd)
	blogCmd.AddCommand(blogViewCmd, blogListCmd, blogFollowersCmd, blogCreateCmd, blogUpdateCmd)

	blogViewMode = addModeFlag(blogViewCmd, views.Detail)
	blogListMode = addModeFlag(blogListCmd, views.Preview)

	for _, c := range []*cobra.Command{blogCreateCmd, blogUpdateCmd} {
		c.Flags().StringVar(&blogForm.Slug, "slug", "", "URL slug")
		c.Flags().StringVar(&blogForm.Name, "name", "", "Blog name")
		c.Flags().StringVar(&blogForm.Desc, "desc", "", "Description (markdown)")
		c.Flags().StringVar(&blogForm.Image, "image", "", "Cover image URL")
		c.Flags().StringSliceVar(&blogForm.Tags, "tags", nil, "Comma-separated tags")
	}
	_ = blogCreateCmd.MarkFlagRequired("slug")
	_ = blogCreateCmd.MarkFlagRequired("name")
}

func blogView(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	mode, err := views.ParseMode(*blogViewMode)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		b, err := app.Pages().Blog(ctx, id, mode, app.Viewer())
		if err != nil {
			return err
		}
		return show(b, func(w io.Writer) { renderBlog(w, b) })
	})
}

func blogList(cmd *cobra.Command, args []string) error {
	mode, err := views.ParseMode(*blogListMode)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		var list []views.BlogView
		if len(args) == 0 {
			list, err = app.Pages().Blogs(ctx, mode, app.Viewer())
		} else {
			var acc blogs.AccountID
			if acc, err = blogs.ParseAccount(args[0]); err != nil {
				return err
			}
			list, err = app.Pages().AccountBlogs(ctx, acc, mode, app.Viewer())
		}
		if err != nil {
			return err
		}
		return show(list, func(w io.Writer) { renderBlogs(w, list) })
	})
}

func blogFollowers(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		list, err := app.Pages().BlogFollowers(ctx, id, app.Viewer())
		if err != nil {
			return err
		}
		return show(list, func(w io.Writer) { renderProfiles(w, list) })
	})
}

func blogCreate(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		c, err := app.Committer()
		if err != nil {
			return err
		}
		o, err := c.CreateBlog(ctx, blogForm)
		if err != nil {
			return err
		}
		return printOutcome("Created", o)
	})
}

func blogUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		c, err := app.Committer()
		if err != nil {
			return err
		}
		b, err := blogs.GetBlog(ctx, app.Chain, id)
		if err != nil {
			return err
		}
		if b == nil {
			return errNotFound("blog", args[0])
		}
		content, err := contentOf[blogs.BlogContent](ctx, app.Store, b.IpfsHash)
		if err != nil {
			return err
		}

		f := forms.BlogFormOf(*b, content)
		flags := cmd.Flags()
		override(flags.Changed("slug"), &f.Slug, blogForm.Slug)
		override(flags.Changed("name"), &f.Name, blogForm.Name)
		override(flags.Changed("desc"), &f.Desc, blogForm.Desc)
		override(flags.Changed("image"), &f.Image, blogForm.Image)
		override(flags.Changed("tags"), &f.Tags, blogForm.Tags)

		o, err := c.UpdateBlog(ctx, *b, content, f)
		if err != nil {
			return err
		}
		return printOutcome("Updated", o)
	})
}
