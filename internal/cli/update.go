package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/entity"
)

func newUpdateCmd(a *app) *cobra.Command {
	var data string
	var merge bool

	cmd := &cobra.Command{
		Use:   "update <type> <id> [field=value...]",
		Short: "Replace an entity",
		Long: `Update sends the given fields as the new entity. With --merge the current
entity is fetched first and the given fields are applied on top of it.

Example:
  larder update recipes 12 --merge servings=6
  larder update categories 2 --data '{"category_name":"Soups"}'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			payload, err := buildPayload(data, args[2:])
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			updater := entity.NewUpdater(client, spec.Name, args[1],
				entity.FromSpec(spec),
				entity.WithNavigator(entity.NavigatorFunc(a.navigator(cmd.ErrOrStderr()))),
			)

			if merge {
				current, err := updater.FetchEntity(cmd.Context())
				if err != nil {
					return err
				}
				base := current.Clone()
				base.Merge(payload)
				payload = base
			}

			result, err := updater.UpdateEntity(cmd.Context(), payload)
			if err != nil {
				return err
			}
			a.status(cmd, "%s", updater.SuccessMessage())
			return a.printer(cmd.OutOrStdout()).detail(result, spec.IDField, false)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "entity fields as a JSON object")
	cmd.Flags().BoolVar(&merge, "merge", false, "apply fields on top of the current entity")
	return cmd
}
