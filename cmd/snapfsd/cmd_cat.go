package main

import (
	"github.com/spf13/cobra"

	"github.com/snapfs/snapfs/pkg/object"
)

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <blob-identity>",
		Short: "Print the contents of a blob by its hex identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := object.HashFromHex(args[0])
			if err != nil {
				return err
			}

			svc, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.close()

			data, err := svc.checkout.ReadBlob(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
