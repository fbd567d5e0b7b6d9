package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"modelhub/internal/download"
)

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Short:   "Delete an installed artifact",
		Example: "  modelhub rm sd-v1-5",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			cat, err := a.resolver()
			if err != nil {
				return err
			}
			orch := download.New(cat, store, download.Options{Logger: a.log.Logger})
			defer orch.Close(context.Background())
			if err := orch.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
