package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snapfs/snapfs/pkg/journal"
)

func newJournalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journal <dump-file>",
		Short: "Print the change records in a CBOR journal dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			records, err := journal.Unmarshal(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rec := range records {
				var parts []string
				for _, p := range rec.Record.ChangedPaths {
					parts = append(parts, "M "+p.String())
				}
				for _, p := range rec.Record.RemovedPaths {
					parts = append(parts, "R "+p.String())
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n",
					rec.Seq,
					rec.Record.Time.Format("2006-01-02T15:04:05Z07:00"),
					strings.Join(parts, ", "),
				)
			}
			return nil
		},
	}
}
