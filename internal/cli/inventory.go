package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"flavorlab/models"
)

type stockView struct {
	Compound     string    `json:"compound"`
	StockGrams   float64   `json:"stock_grams"`
	ReorderGrams float64   `json:"reorder_threshold_grams"`
	NeedsReorder bool      `json:"needs_reorder"`
	LastUpdated  time.Time `json:"last_updated"`
}

func newStockViews(records []models.InventoryRecord) []stockView {
	views := make([]stockView, len(records))
	for i, record := range records {
		views[i] = stockView{
			Compound:     record.CompoundName,
			StockGrams:   record.StockGrams,
			ReorderGrams: record.ReorderThresholdGrams,
			NeedsReorder: record.NeedsReorder(),
			LastUpdated:  record.LastUpdated,
		}
	}
	return views
}

func writeStockTable(w io.Writer, heading string, views []stockView) error {
	fmt.Fprintf(w, "%s:\n", cases.Title(language.English).String(heading))
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "  (none)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPOUND\tSTOCK (g)\tREORDER (g)\tUPDATED")
	for _, view := range views {
		marker := ""
		if view.NeedsReorder {
			marker = " *"
		}
		fmt.Fprintf(tw, "%s%s\t%.3f\t%.3f\t%s\n",
			view.Compound, marker, view.StockGrams, view.ReorderGrams, view.LastUpdated.Format(time.DateOnly))
	}
	return tw.Flush()
}

func newInventoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Show and adjust compound stock",
	}
	cmd.AddCommand(newInventoryListCmd(a), newInventoryLowCmd(a), newInventorySetCmd(a))
	return cmd
}

func newInventoryListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tracked compound",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.service.Store().ListInventory(cmd.Context())
			if err != nil {
				return err
			}
			views := newStockViews(records)
			return a.render(cmd, views, func(w io.Writer) error {
				return writeStockTable(w, "compound stock", views)
			})
		},
	}
}

func newInventoryLowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "low",
		Short: "List compounds at or below their reorder threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.service.Store().LowStock(cmd.Context())
			if err != nil {
				return err
			}
			views := newStockViews(records)
			return a.render(cmd, views, func(w io.Writer) error {
				return writeStockTable(w, "low stock", views)
			})
		},
	}
}

func newInventorySetCmd(a *app) *cobra.Command {
	var reorder float64

	cmd := &cobra.Command{
		Use:   "set <compound> <grams>",
		Short: "Set the on-hand stock of a compound",
		Long: `Set the on-hand stock of a compound, creating the record if needed. The
reorder threshold is kept unless --reorder is given.

Examples:
  flavorlab inventory set Vanillin 750
  flavorlab inventory set "Ethyl Butyrate" 40 --reorder 15`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			grams, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid grams %q", args[1])
			}

			st := a.service.Store()
			if !cmd.Flags().Changed("reorder") {
				existing, ok, err := st.InventoryByName(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ok {
					reorder = existing.ReorderThresholdGrams
				}
			}

			record, err := st.SetInventory(cmd.Context(), args[0], grams, reorder)
			if err != nil {
				return err
			}
			views := newStockViews([]models.InventoryRecord{record})
			return a.render(cmd, views[0], func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: %.3f g on hand, reorder at %.3f g\n",
					record.CompoundName, record.StockGrams, record.ReorderThresholdGrams)
				return err
			})
		},
	}

	cmd.Flags().Float64Var(&reorder, "reorder", 0, "Reorder threshold in grams")
	return cmd
}
