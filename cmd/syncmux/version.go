package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the syncmux version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("syncmux v%s (commit %s)\n", version, commit)
			return nil
		},
	}
}
