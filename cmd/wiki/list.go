package main

import (
	"fmt"
	"strings"

	"github.com/imrenagi/go-wiki/server"
	"github.com/imrenagi/go-wiki/wiki"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "Print the titles of the entries, optionally only those containing query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		store, closeStore, err := server.NewStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer closeStore()

		w := wiki.New(store, nil)
		titles, err := w.Matching(ctx, strings.Join(args, ""))
		if err != nil {
			return err
		}
		for _, title := range titles {
			fmt.Fprintln(cmd.OutOrStdout(), title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
