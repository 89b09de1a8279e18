package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <rev>",
		Short: "Import the manifest for a revision and print the root tree identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.close()

			root, err := svc.checkout.ImportSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), root.String())
			return nil
		},
	}
}
