package cli

import (
	"github.com/spf13/cobra"

	"github.com/CavHack/EinsteinDB/internal/datom"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Tx int64
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the transaction log",
		Long: `Print the transaction log.

Without flags the whole log prints in commit order. With --tx only
that transaction's datoms print.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConn(cmd.Context(), opts.RootOptions)
			if err != nil {
				return err
			}
			defer conn.Close()

			var ds []datom.Datom
			if opts.Tx != 0 {
				ds, err = conn.ReadTransaction(cmd.Context(), datom.Entid(opts.Tx))
			} else {
				ds, err = conn.ReadLog(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			if opts.Format == "json" {
				return out.Success(datomsJSON(ds))
			}
			cmd.Print(FormatDatoms(ds, conn.Schema()))
			return nil
		},
	}

	cmd.Flags().Int64Var(&opts.Tx, "tx", 0, "print a single transaction by id")

	return cmd
}

func datomsJSON(ds []datom.Datom) []map[string]any {
	out := make([]map[string]any, 0, len(ds))
	for _, d := range ds {
		v, tag := datom.ToSQLValue(d.V)
		out = append(out, map[string]any{
			"e":     int64(d.E),
			"a":     int64(d.A),
			"v":     v,
			"tag":   tag,
			"tx":    int64(d.Tx),
			"added": d.Added,
		})
	}
	return out
}
