package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/entity"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			deleter := entity.NewDeleter(client, spec.Name, args[1],
				entity.FromSpec(spec),
				entity.WithNavigator(entity.NavigatorFunc(a.navigator(cmd.ErrOrStderr()))),
			)
			result, err := deleter.DeleteEntity(cmd.Context())
			if err != nil {
				return err
			}

			if cache, err := a.openCache(); err == nil {
				if err := cache.DeleteEntity(spec.Name, args[1]); err != nil {
					a.logger.Warn("evict cached entity failed", "type", spec.Name, "id", args[1], "error", err)
				}
				cache.Detach()
			}

			a.status(cmd, "%s", deleter.SuccessMessage())
			out := a.printer(cmd.OutOrStdout())
			if out.structured() {
				return out.encode(result)
			}
			return nil
		},
	}
}
