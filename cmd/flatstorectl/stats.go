package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print allocator stats in the line-per-stat wire format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := engine()
			if err != nil {
				return err
			}
			os.Stdout.Write(e.StatsText())
			return nil
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "allocator-stats",
		Short: "Print allocator-internal counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := engine()
			if err != nil {
				return err
			}
			os.Stdout.Write(e.AllocatorStats())
			return nil
		},
	})
}
