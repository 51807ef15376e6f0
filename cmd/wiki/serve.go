package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/imrenagi/go-wiki/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wiki HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s := server.New(server.Opts{Config: cfg})
		return s.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "address the HTTP server listens on")
	_ = v.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
