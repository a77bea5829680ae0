package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// NewPartitionsCommand creates the partitions command.
func NewPartitionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "partitions",
		Short:         "Print the id partitions and their next-free pointers",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConn(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer conn.Close()

			parts := conn.PartitionMap()
			names := make([]string, 0, len(parts))
			for name := range parts {
				names = append(names, name)
			}
			sort.Strings(names)

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if rootOpts.Format == "json" {
				rows := make([]map[string]any, 0, len(names))
				for _, name := range names {
					p := parts[name]
					rows = append(rows, map[string]any{
						"part":          name,
						"start":         int64(p.Start),
						"end":           int64(p.End),
						"next":          int64(p.Next),
						"allowExcision": p.AllowExcision,
					})
				}
				return out.Success(rows)
			}

			var b strings.Builder
			for _, name := range names {
				p := parts[name]
				fmt.Fprintf(&b, "%s [%d, %d) next=%d\n", name, int64(p.Start), int64(p.End), int64(p.Next))
			}
			cmd.Print(b.String())
			return nil
		},
	}
}
