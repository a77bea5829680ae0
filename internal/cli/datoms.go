package cli

import (
	"github.com/spf13/cobra"
)

// NewDatomsCommand creates the datoms command.
func NewDatomsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "datoms",
		Short: "Print the current state of the store",
		Long: `Print the current state of the store.

Each line is one live fact. Retracted facts are absent here but
remain in the log.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConn(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer conn.Close()

			ds, err := conn.ReadDatoms(cmd.Context())
			if err != nil {
				return err
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if rootOpts.Format == "json" {
				return out.Success(datomsJSON(ds))
			}
			cmd.Print(FormatDatoms(ds, conn.Schema()))
			return nil
		},
	}
}
