package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"flavorlab/internal/ledger"
)

func newLabelCmd(a *app) *cobra.Command {
	var (
		version string
		opts    ledger.LabelOptions
	)

	cmd := &cobra.Command{
		Use:   "label <code>",
		Short: "Print the nutrition facts label for a formulation",
		Long: `Print the nutrition facts panel for one container of a formulation. Sugar is
derived from the target Brix; sweetener and acid default to the linked
catalog ingredients.

Examples:
  flavorlab label COLA-1
  flavorlab label COLA-1 --container-ml 500 --batch COLA-1-2025-001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := versionFlag(version)
			if err != nil {
				return err
			}
			text, err := a.service.ProductionLabel(cmd.Context(), args[0], v, opts)
			if err != nil {
				return err
			}
			return a.render(cmd, map[string]string{"label": text}, func(w io.Writer) error {
				_, err := fmt.Fprint(w, text)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Formulation version (default latest)")
	cmd.Flags().Float64Var(&opts.ContainerML, "container-ml", 0, "Container volume in mL (default from config)")
	cmd.Flags().StringVar(&opts.BatchNumber, "batch", "", "Batch number printed as the lot")
	cmd.Flags().StringVar(&opts.Sweetener, "sweetener", "", "Sweetener named in the ingredients line")
	cmd.Flags().StringVar(&opts.Acid, "acid", "", "Acid named in the ingredients line")
	return cmd
}
