package main

import (
	"os"

	"github.com/imrenagi/go-wiki/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "wiki",
	Short: "A small wiki of Markdown entries",
	Long: `wiki serves a collection of Markdown entries over HTTP.
Entries can be browsed, searched, created and edited from the browser.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and initializes the logger with the
// configured level.
func loadConfig() (server.Config, error) {
	cfg, err := server.LoadConfig(v, cfgFile)
	if err != nil {
		return server.Config{}, err
	}
	_ = server.InitializeLogger(cfg.Log.Level)
	log.Debug().Interface("config", cfg).Msg("configuration loaded")
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("backend", server.BackendFile, "entry store backend (file, memory, gcs)")
	rootCmd.PersistentFlags().String("entries-dir", "entries", "directory holding the entry files")

	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = v.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("entries-dir"))
}
