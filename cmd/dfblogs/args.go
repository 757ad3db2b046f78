package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stake-plus/df-blogs/src/api"
	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/forms"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/views"
)

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// accountArg is the first argument as an account, or the signer's account when there is none.
func accountArg(app *api.App, args []string) (blogs.AccountID, error) {
	if len(args) > 0 {
		return blogs.ParseAccount(args[0])
	}
	if app.Signer == nil {
		return blogs.AccountID{}, fmt.Errorf("no address given and SIGNER_SEED is not set")
	}
	return app.Signer.Account(), nil
}

func addModeFlag(cmd *cobra.Command, def views.Mode) *string {
	return cmd.Flags().String("mode", def.String(), "Render mode: name, preview or detail")
}

// contentOf fetches the document behind hash; an empty hash gives the zero document.
func contentOf[C any](ctx context.Context, store ipfs.Store, hash string) (C, error) {
	var zero C
	if hash == "" {
		return zero, nil
	}
	doc, err := ipfs.Fetch[C](ctx, store, hash)
	if err != nil {
		return zero, err
	}
	return *doc, nil
}

func printOutcome(verb string, o forms.Outcome) error {
	return show(o, func(w io.Writer) {
		what := o.Path
		if o.Address != "" {
			what = o.Address
		}
		fmt.Fprintf(w, "%s %s in block %s\n", color.GreenString(verb), what, o.Block)
	})
}

func errNotFound(kind, id string) error {
	return fmt.Errorf("%s %s not found", kind, id)
}

// override sets *dst to v when the flag was given.
func override[T any](changed bool, dst *T, v T) {
	if changed {
		*dst = v
	}
}
