package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Mactus/memcached/store"
)

var (
	cachedumpTier  string
	cachedumpLimit int
)

func init() {
	cmd := &cobra.Command{
		Use:   "cachedump",
		Short: "Dump items from one tier's LRU",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCachedump()
		},
	}
	cmd.Flags().StringVar(&cachedumpTier, "tier", "small", "tier to dump: small or large")
	cmd.Flags().IntVar(&cachedumpLimit, "limit", 100, "max items to print, 0 = unbounded")
	rootCmd.AddCommand(cmd)
}

func runCachedump() error {
	e, err := engine()
	if err != nil {
		return err
	}
	tier := store.Small
	if cachedumpTier == "large" {
		tier = store.Large
	}
	os.Stdout.Write(e.Cachedump(tier, cachedumpLimit))
	return nil
}
