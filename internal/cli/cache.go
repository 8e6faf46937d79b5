package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/shape"
	"github.com/mesh-intelligence/larder/pkg/types"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and move the local entity cache",
	}
	cmd.AddCommand(newCacheListCmd(a), newCacheExportCmd(a), newCacheImportCmd(a))
	return cmd
}

func newCacheListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [type]",
		Short: "List cached entities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityType := ""
			if len(args) == 1 {
				spec, err := lookupEntity(args[0])
				if err != nil {
					return err
				}
				entityType = spec.Name
			}

			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer cache.Detach()

			entries, err := cache.ListEntities(entityType)
			if err != nil {
				return systemError{err}
			}

			out := a.printer(cmd.OutOrStdout())
			if out.structured() {
				return out.encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out.w, "Cache is empty.")
				return nil
			}
			now := time.Now()
			tw := tabwriter.NewWriter(out.w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tID\tNAME\tFETCHED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.EntityType, e.EntityID, displayName(e.Payload), humanize.RelTime(e.FetchedAt, now, "ago", "from now"))
			}
			return tw.Flush()
		},
	}
}

func newCacheExportCmd(a *app) *cobra.Command {
	var entityType string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write cached entities to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if entityType != "" {
				spec, err := lookupEntity(entityType)
				if err != nil {
					return err
				}
				entityType = spec.Name
			}
			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer cache.Detach()

			n, err := cache.Export(args[0], entityType)
			if err != nil {
				return systemError{err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s entities to %s\n", humanize.Comma(int64(n)), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&entityType, "type", "", "export only this entity type")
	return cmd
}

func newCacheImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load cached entities from a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer cache.Detach()

			n, err := cache.Import(args[0])
			if err != nil {
				return systemError{err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s entities from %s\n", humanize.Comma(int64(n)), args[0])
			return nil
		},
	}
}

// displayName returns the entity's first name-like field, or "".
func displayName(item *types.Object) string {
	if v, ok := shape.NameLike(item); ok {
		return types.FormatValue(v)
	}
	return ""
}
