package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/types"
)

func newGetCmd(a *app) *cobra.Command {
	var raw, offline bool

	cmd := &cobra.Command{
		Use:   "get <type> <id>",
		Short: "Show an entity",
		Long: `Get fetches one entity and stores it in the local cache. With --offline
the cached copy is shown instead and no request is made.

Example:
  larder get recipes 12
  larder get recipes 12 --raw --format json
  larder get meal 3 --offline`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			id := args[1]
			out := a.printer(cmd.OutOrStdout())

			cache, err := a.openCache()
			if err != nil {
				return err
			}
			defer cache.Detach()

			if offline {
				cached, err := cache.GetEntity(spec.Name, id)
				if errors.Is(err, types.ErrNotFound) {
					return fmt.Errorf("%s %q is not cached: %w", spec.Name, id, err)
				}
				if err != nil {
					return systemError{err}
				}
				return out.detail(cached.Payload, spec.IDField, raw)
			}

			client, err := a.apiClient()
			if err != nil {
				return err
			}
			item, err := client.GetJSON(cmd.Context(), spec.Endpoint+"/"+id)
			if err != nil {
				return err
			}
			if err := cache.PutEntity(spec.Name, id, item); err != nil {
				a.logger.Warn("cache entity failed", "type", spec.Name, "id", id, "error", err)
			}
			return out.detail(item, spec.IDField, raw)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "show fields as returned, without flattening")
	cmd.Flags().BoolVar(&offline, "offline", false, "read from the local cache only")
	return cmd
}
