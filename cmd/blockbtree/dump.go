package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"blockbtree"
	"blockbtree/storage"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [TREE]",
	Short: "Print every (key, payload) pair in ascending key order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adapter, err := storage.OpenMmap(args[0], flagBlockSize)
		if err != nil {
			return err
		}
		defer adapter.Close()

		store, err := blockbtree.Open(adapter)
		if err != nil {
			return err
		}

		fmt.Printf("height=%d entries=%d\n", store.Height(), store.Len())
		return store.Traverse(func(key uint64, payload []byte) {
			fmt.Printf("%d -> %s\n", key, payload)
		})
	},
}
