package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mediamatch",
		Short: "Fuzzy media identification for release file names",
		Long: `mediamatch identifies movies, series, anime and music from messy
release file names.

Features:
  - Release name normalization ("The.Matrix.1999.1080p.BluRay" -> "The Matrix 1999")
  - Accent and case insensitive catalog lookup with strict and lenient names
  - Movie/series disambiguation through an ordered scoring rule list
  - Batch grouping of files by content type, in parallel`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/mediamatch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newNormalizeCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newTagCmd())
	rootCmd.AddCommand(newUntagCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newArrCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mediamatch %s\n", version)
		},
	}
}
