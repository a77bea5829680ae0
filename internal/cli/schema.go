package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CavHack/EinsteinDB/internal/datom"
	"github.com/CavHack/EinsteinDB/internal/schema"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "schema",
		Short:         "Print the installed attributes",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openConn(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer conn.Close()

			s := conn.Schema()
			attrs := s.AttributeMap()
			entids := make([]datom.Entid, 0, len(attrs))
			for e := range attrs {
				entids = append(entids, e)
			}
			sort.Slice(entids, func(i, j int) bool { return entids[i] < entids[j] })

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			if rootOpts.Format == "json" {
				rows := make([]map[string]any, 0, len(entids))
				for _, e := range entids {
					rows = append(rows, attributeJSON(e, attrs[e], s))
				}
				return out.Success(rows)
			}

			var b strings.Builder
			for _, e := range entids {
				fmt.Fprintf(&b, "%s %s\n", formatEntid(e, s), describeAttribute(attrs[e]))
			}
			cmd.Print(b.String())
			return nil
		},
	}
}

func describeAttribute(a schema.Attribute) string {
	parts := []string{a.ValueType.String()}
	if a.Multival {
		parts = append(parts, "many")
	} else {
		parts = append(parts, "one")
	}
	switch a.Unique {
	case schema.UniqueValue:
		parts = append(parts, "unique=value")
	case schema.UniqueIdentity:
		parts = append(parts, "unique=identity")
	}
	if a.Index {
		parts = append(parts, "index")
	}
	if a.Fulltext {
		parts = append(parts, "fulltext")
	}
	if a.Component {
		parts = append(parts, "component")
	}
	if a.NoHistory {
		parts = append(parts, "noHistory")
	}
	return strings.Join(parts, " ")
}

func attributeJSON(e datom.Entid, a schema.Attribute, s *schema.Schema) map[string]any {
	row := map[string]any{
		"entid":       int64(e),
		"valueType":   a.ValueType.String(),
		"cardinality": map[bool]string{true: "many", false: "one"}[a.Multival],
		"index":       a.Index,
		"fulltext":    a.Fulltext,
		"isComponent": a.Component,
		"noHistory":   a.NoHistory,
	}
	if kw, ok := s.IdentForEntid(e); ok {
		row["ident"] = kw.String()
	}
	switch a.Unique {
	case schema.UniqueValue:
		row["unique"] = "value"
	case schema.UniqueIdentity:
		row["unique"] = "identity"
	}
	return row
}
