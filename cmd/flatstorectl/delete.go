package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Mactus/memcached/store"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "delete <key>",
		Short: "Delete-lock a key, deferring its physical removal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args[0])
		},
	})
}

func runDelete(key string) error {
	e, err := engine()
	if err != nil {
		return err
	}
	it, err := e.GetNoCheck([]byte(key))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			printError("no such key %q\n", key)
			return nil
		}
		return err
	}
	e.Deref(it)
	e.MarkDeleted(it)
	printInfo("delete-locked %q\n", key)
	return nil
}
