package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
)

var (
	allocValue   string
	allocFlags   uint32
	allocExptime int64
	allocIP      string
)

func init() {
	cmd := newAllocCmd()
	cmd.Flags().StringVar(&allocValue, "value", "", "value bytes to store")
	cmd.Flags().Uint32Var(&allocFlags, "flags", 0, "opaque user flags")
	cmd.Flags().Int64Var(&allocExptime, "exptime", 0, "expiration unix time, 0 = never")
	cmd.Flags().StringVar(&allocIP, "ip", "", "IPv4 address to stamp into tail slack, if room allows")
	rootCmd.AddCommand(cmd)
}

func newAllocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alloc <key>",
		Short: "Allocate and link a new item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlloc(args[0])
		},
	}
}

func runAlloc(key string) error {
	e, err := engine()
	if err != nil {
		return err
	}

	var ip net.IP
	if allocIP != "" {
		ip = net.ParseIP(allocIP)
	}

	it, err := e.Alloc([]byte(key), allocFlags, allocExptime, uint32(len(allocValue)), ip)
	if err != nil {
		return fmt.Errorf("alloc failed: %w", err)
	}
	e.WriteValue(it, []byte(allocValue))
	e.Link(it, []byte(key))
	printInfo("allocated %q (%s tier)\n", key, it.Tier)
	return nil
}
