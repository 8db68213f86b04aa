package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagVerbose   bool
	flagBlockSize uint16
)

var rootCmd = &cobra.Command{
	Use:   "blockbtree",
	Short: "Bulk-load and query an immutable block B+ tree",
	Long: `blockbtree builds a read-only B+ tree from a sorted CSV of
(key, payload) pairs and answers point lookups against it. There is no
insert or delete subcommand: a tree is built once and read many times.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Uint16Var(&flagBlockSize, "block-size", 4096, "storage block size in bytes")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(dumpCmd)
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	if flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return logger
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
