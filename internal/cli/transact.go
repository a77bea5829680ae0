package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CavHack/EinsteinDB/internal/transact"
)

// NewTransactCommand creates the transact command.
func NewTransactCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transact <facts.yaml>",
		Short: "Atomically apply a fact file",
		Long: `Atomically apply a fact file.

The whole file commits as one transaction: every fact lands or none
does. Tempid resolutions are printed on success.

Example:
  einsteindb transact people.yaml --db facts.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConn(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer conn.Close()

			facts, err := LoadFacts(args[0], conn.Schema())
			if err != nil {
				return WrapExitError(ExitCommandError, "loading facts", err)
			}

			report, err := conn.Transact(cmd.Context(), facts)
			if err != nil {
				if code := transact.ErrorCode(err); code != "" {
					out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
					out.Failure(string(code), err.Error())
					return WrapExitError(ExitFailure, "transaction rejected", err)
				}
				return err
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout(), Verbose: rootOpts.Verbose}
			if rootOpts.Format == "json" {
				return out.Success(map[string]any{
					"tx":        int64(report.TxID),
					"txInstant": report.TxInstant.String(),
					"tempids":   tempidMap(report),
				})
			}

			var b strings.Builder
			fmt.Fprintf(&b, "committed tx %d at %s", int64(report.TxID), report.TxInstant)
			names := make([]string, 0, len(report.Tempids))
			for name := range report.Tempids {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(&b, "\n  %s -> %d", name, int64(report.Tempids[name]))
			}
			return out.Success(b.String())
		},
	}
}

func tempidMap(report *transact.TxReport) map[string]int64 {
	out := make(map[string]int64, len(report.Tempids))
	for name, e := range report.Tempids {
		out[name] = int64(e)
	}
	return out
}
