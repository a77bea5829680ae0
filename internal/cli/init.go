package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create and bootstrap a new store",
		Long: `Create and bootstrap a new store.

A fresh database receives the built-in partitions and the core schema
as its first transaction. Running init on an existing store is a
no-op.

Example:
  einsteindb init --db facts.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConn(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer conn.Close()

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			s := conn.Schema()
			return out.Success(fmt.Sprintf("store ready at %s (%d idents, %d attributes)",
				rootOpts.DBPath, len(s.IdentMap()), len(s.AttributeMap())))
		},
	}
}
