package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/entity"
)

func newCreateCmd(a *app) *cobra.Command {
	var data string
	var noRedirect bool

	cmd := &cobra.Command{
		Use:   "create <type> [field=value...]",
		Short: "Create an entity",
		Long: `Create posts a new entity of the given type.

Fields come from --data (a JSON object) and field=value arguments, which
override --data. Values that parse as JSON keep their type.

Example:
  larder create recipes recipe_name="Tomato soup" servings=4
  larder create meals --data '{"meal_name":"Sunday lunch"}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			payload, err := buildPayload(data, args[1:])
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}

			opts := []entity.Option{
				entity.FromSpec(spec),
				entity.WithNavigator(entity.NavigatorFunc(a.navigator(cmd.ErrOrStderr()))),
			}
			if noRedirect {
				opts = append(opts, entity.WithoutRedirect())
			}
			creator := entity.NewCreator(client, spec.Name, opts...)

			result, err := creator.CreateEntity(cmd.Context(), payload)
			if err != nil {
				return err
			}
			a.status(cmd, "%s", creator.SuccessMessage())
			return a.printer(cmd.OutOrStdout()).detail(result, spec.IDField, false)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "entity fields as a JSON object")
	cmd.Flags().BoolVar(&noRedirect, "no-redirect", false, "do not report the page to show next")
	return cmd
}
