package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"blockbtree"
	"blockbtree/storage"
)

var getCmd = &cobra.Command{
	Use:   "get [TREE] [KEY]",
	Short: "Look up a single key in a constructed tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return err
		}

		adapter, err := storage.OpenMmap(args[0], flagBlockSize)
		if err != nil {
			return err
		}
		defer adapter.Close()

		store, err := blockbtree.Open(adapter)
		if err != nil {
			return err
		}

		payload, found, err := store.Get(key)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("%d: not found\n", key)
			return nil
		}
		fmt.Printf("%d: %s\n", key, payload)
		return nil
	},
}
