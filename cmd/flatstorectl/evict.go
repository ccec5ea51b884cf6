package main

import (
	"github.com/spf13/cobra"

	"github.com/Mactus/memcached/store"
)

var (
	evictTier   string
	evictNeeded int32
)

func init() {
	cmd := &cobra.Command{
		Use:   "evict",
		Short: "Drive the eviction driver directly, bypassing alloc's replenishment loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvict()
		},
	}
	cmd.Flags().StringVar(&evictTier, "tier", "small", "tier to free capacity in: small or large")
	cmd.Flags().Int32Var(&evictNeeded, "needed", 1, "chunks to reclaim")
	rootCmd.AddCommand(cmd)
}

func runEvict() error {
	e, err := engine()
	if err != nil {
		return err
	}
	tier := store.Small
	if evictTier == "large" {
		tier = store.Large
	}
	if e.LRUEvict(tier, evictNeeded) {
		printInfo("evicted at least one item\n")
	} else {
		printInfo("nothing evicted\n")
	}
	return nil
}
