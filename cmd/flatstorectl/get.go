package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mactus/memcached/store"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Look up a key and print its value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args[0])
		},
	})
}

func runGet(key string) error {
	e, err := engine()
	if err != nil {
		return err
	}
	it, err := e.Get([]byte(key))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			printInfo("not found\n")
			return nil
		}
		return err
	}
	defer e.Deref(it)
	fmt.Printf("%s\n", e.ReadValue(it))
	return nil
}
