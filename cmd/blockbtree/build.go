package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"blockbtree"
	"blockbtree/storage"
)

var buildCmd = &cobra.Command{
	Use:   "build [INPUT.csv] [OUTPUT]",
	Short: "Bulk-load a sorted key,payload CSV into a tree file",
	Long: `build reads INPUT.csv, a two-column key,payload file already sorted
ascending by key, and constructs a tree over it, committing the result
to OUTPUT (an atomic rename once construction finishes).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := readEntries(args[0])
		if err != nil {
			return err
		}

		adapter, err := storage.CreateForConstruct(args[1], flagBlockSize)
		if err != nil {
			return err
		}

		logger := newLogger()
		if err := blockbtree.Construct(adapter, entries, blockbtree.WithLogger(logger)); err != nil {
			return err
		}

		return adapter.CommitAndClose()
	},
}

func readEntries(path string) ([]blockbtree.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	var entries []blockbtree.Entry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		key, err := strconv.ParseUint(record[0], 10, 64)
		if err != nil {
			return nil, err
		}
		entries = append(entries, blockbtree.Entry{Key: key, Payload: []byte(record[1])})
	}
	return entries, nil
}
