package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hltmenu",
		Short:         "Trigger menu module records: serve, dump and check",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newDumpCmd(), newCheckCmd())
	return root
}
