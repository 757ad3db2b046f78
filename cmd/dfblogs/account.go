package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stake-plus/df-blogs/src/keys"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage signing keys",
}

var accountNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new account and its mnemonic",
	Args:  cobra.NoArgs,
	RunE:  accountNew,
}

var accountShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the address of SIGNER_SEED",
	Args:  cobra.NoArgs,
	RunE:  accountShow,
}

func init() {
	RootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountNewCmd, accountShowCmd)
}

func accountNew(cmd *cobra.Command, args []string) error {
	worker := keys.NewMnemonicWorker()
	defer worker.Close()

	acc, err := worker.Generate(cmd.Context(), cfg.SS58Prefix)
	if err != nil {
		return err
	}
	return show(acc, func(w io.Writer) {
		fmt.Fprintf(w, "Address:  %s\n", acc.Address)
		fmt.Fprintf(w, "Mnemonic: %s\n", acc.Mnemonic)
		fmt.Fprintln(w, color.YellowString("Store the mnemonic somewhere safe; it is the only way to recover the account."))
	})
}

func accountShow(cmd *cobra.Command, args []string) error {
	if cfg.SignerSeed == "" {
		return fmt.Errorf("SIGNER_SEED is not set")
	}
	s, err := keys.NewSigner(cfg.SignerSeed, cfg.SS58Prefix)
	if err != nil {
		return err
	}
	return show(map[string]string{"address": s.Address()}, func(w io.Writer) {
		fmt.Fprintln(w, s.Address())
	})
}
