package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "snapfsd",
		Short: "Source-control-aware virtual filesystem service",
	}

	root.PersistentFlags().String("config", "snapfs.toml", "path to the configuration file")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newCatCmd())
	root.AddCommand(newJournalCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("snapfsd 0.1.0-dev")
		},
	}
}
