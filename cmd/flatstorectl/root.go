package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mactus/memcached/assoc"
	"github.com/Mactus/memcached/store"
)

var (
	verbose    bool
	jsonOut    bool
	configPath string

	engineOnce *store.Engine
)

var rootCmd = &cobra.Command{
	Use:     "flatstorectl",
	Short:   "Inspect a flat storage engine",
	Long:    `flatstorectl drives a single in-process flat storage engine for manual allocator/eviction/coalescer experiments.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output machine-readable text where supported")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML engine config (defaults to store.DefaultConfig)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// engine lazily builds the process-lifetime engine instance every
// subcommand shares, loading cfg from --config when given.
func engine() (*store.Engine, error) {
	if engineOnce != nil {
		return engineOnce, nil
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler = slog.NewTextHandler(io.Discard, nil)
	if verbose {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	log := slog.New(handler)

	e, err := store.NewEngine(cfg, assoc.NewMapIndex(0), log)
	if err != nil {
		return nil, err
	}
	engineOnce = e
	return e, nil
}

func printInfo(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}

func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}
