package cli

import (
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var exclude []string

	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "List entities of a type",
		Long: `List fetches every entity of the given type and shows them as a table.
Columns come from the first entity's fields, without its id field.

Example:
  larder list recipes
  larder list recipes --exclude description,created_at`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := lookupEntity(args[0])
			if err != nil {
				return err
			}
			client, err := a.apiClient()
			if err != nil {
				return err
			}
			items, err := client.List(cmd.Context(), spec)
			if err != nil {
				return err
			}
			return a.printer(cmd.OutOrStdout()).list(items, spec.IDField, exclude)
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "fields to leave out of the table")
	return cmd
}
