package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// entityTypeInfo is the structured form of one registered entity type.
type entityTypeInfo struct {
	Name     string `json:"name" yaml:"name"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	IDField  string `json:"id_field" yaml:"id_field"`
	ListKey  string `json:"list_key" yaml:"list_key"`
}

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the entity types larder knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []entityTypeInfo
			for _, name := range types.EntityNames() {
				spec, _ := types.LookupEntity(name)
				infos = append(infos, entityTypeInfo{
					Name:     spec.Name,
					Endpoint: spec.Endpoint,
					IDField:  spec.IDField,
					ListKey:  spec.ListKey,
				})
			}

			out := a.printer(cmd.OutOrStdout())
			if out.structured() {
				return out.encode(infos)
			}
			tw := tabwriter.NewWriter(out.w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tENDPOINT\tID FIELD")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Endpoint, info.IDField)
			}
			return tw.Flush()
		},
	}
}
