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

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"pr"},
	Short:   "View and edit profiles",
}

var profileViewCmd = &cobra.Command{
	Use:   "view [address]",
	Short: "Show a profile, the signer's by default",
	Args:  cobra.MaximumNArgs(1),
	RunE:  profileView,
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Create or edit the signer's profile; only the given flags change",
	Args:  cobra.NoArgs,
	RunE:  profileUpdate,
}

var profileFollowersCmd = &cobra.Command{
	Use:   "followers [address]",
	Short: "List the followers of an account",
	Args:  cobra.MaximumNArgs(1),
	RunE: accountListRun(func(ctx context.Context, p *views.Pages, acc blogs.AccountID, v views.Viewer) ([]views.ProfileView, error) {
		return p.AccountFollowers(ctx, acc, v)
	}),
}

var profileFollowingCmd = &cobra.Command{
	Use:   "following [address]",
	Short: "List the accounts an account follows",
	Args:  cobra.MaximumNArgs(1),
	RunE: accountListRun(func(ctx context.Context, p *views.Pages, acc blogs.AccountID, v views.Viewer) ([]views.ProfileView, error) {
		return p.AccountFollowing(ctx, acc, v)
	}),
}

var profileBlogsCmd = &cobra.Command{
	Use:   "followed-blogs [address]",
	Short: "List the blogs an account follows",
	Args:  cobra.MaximumNArgs(1),
	RunE:  profileBlogs,
}

var (
	profileViewMode *string
	profileForm     forms.ProfileForm
)

func init() {
	RootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileViewCmd, profileUpdateCmd, profileFollowersCmd, profileFollowingCmd, profileBlogsCmd)

	profileViewMode = addModeFlag(profileViewCmd, views.Detail)

	f := profileUpdateCmd.Flags()
	f.StringVar(&profileForm.Username, "username", "", "Username")
	f.StringVar(&profileForm.Fullname, "fullname", "", "Full name")
	f.StringVar(&profileForm.Avatar, "avatar", "", "Avatar URL")
	f.StringVar(&profileForm.About, "about", "", "About (markdown)")
	f.StringVar(&profileForm.Facebook, "facebook", "", "Facebook URL")
	f.StringVar(&profileForm.Twitter, "twitter", "", "Twitter URL")
	f.StringVar(&profileForm.LinkedIn, "linkedin", "", "LinkedIn URL")
	f.StringVar(&profileForm.Github, "github", "", "GitHub URL")
	f.StringVar(&profileForm.Instagram, "instagram", "", "Instagram URL")
}

func profileView(cmd *cobra.Command, args []string) error {
	mode, err := views.ParseMode(*profileViewMode)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		acc, err := accountArg(app, args)
		if err != nil {
			return err
		}
		p, err := app.Pages().Profile(ctx, acc, mode, app.Viewer())
		if err != nil {
			return err
		}
		return show(p, func(w io.Writer) { renderProfile(w, p) })
	})
}

func profileUpdate(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		c, err := app.Committer()
		if err != nil {
			return err
		}
		acc, err := blogs.GetSocialAccount(ctx, app.Chain, app.Signer.Account())
		if err != nil {
			return err
		}

		var (
			content *blogs.ProfileContent
			f       forms.ProfileForm
		)
		if acc != nil && acc.Profile != nil {
			doc, err := contentOf[blogs.ProfileContent](ctx, app.Store, blogs.ProfileHash(*acc))
			if err != nil {
				return err
			}
			content = &doc
			f = forms.ProfileFormOf(*acc.Profile, doc)
		}

		flags := cmd.Flags()
		override(flags.Changed("username"), &f.Username, profileForm.Username)
		override(flags.Changed("fullname"), &f.Fullname, profileForm.Fullname)
		override(flags.Changed("avatar"), &f.Avatar, profileForm.Avatar)
		override(flags.Changed("about"), &f.About, profileForm.About)
		override(flags.Changed("facebook"), &f.Facebook, profileForm.Facebook)
		override(flags.Changed("twitter"), &f.Twitter, profileForm.Twitter)
		override(flags.Changed("linkedin"), &f.LinkedIn, profileForm.LinkedIn)
		override(flags.Changed("github"), &f.Github, profileForm.Github)
		override(flags.Changed("instagram"), &f.Instagram, profileForm.Instagram)

		o, err := c.SaveProfile(ctx, acc, content, f, cfg.SS58Prefix)
		if err != nil {
			return err
		}
		return printOutcome("Saved", o)
	})
}

func accountListRun(list func(ctx context.Context, p *views.Pages, acc blogs.AccountID, v views.Viewer) ([]views.ProfileView, error)) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, app *api.App) error {
			acc, err := accountArg(app, args)
			if err != nil {
				return err
			}
			profiles, err := list(ctx, app.Pages(), acc, app.Viewer())
			if err != nil {
				return err
			}
			return show(profiles, func(w io.Writer) { renderProfiles(w, profiles) })
		})
	}
}

func profileBlogs(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *api.App) error {
		acc, err := accountArg(app, args)
		if err != nil {
			return err
		}
		list, err := app.Pages().FollowedBlogs(ctx, acc, app.Viewer())
		if err != nil {
			return err
		}
		return show(list, func(w io.Writer) { renderBlogs(w, list) })
	})
}
