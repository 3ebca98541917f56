package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"flavorlab/internal/inventory"
	"flavorlab/internal/ledger"
	"flavorlab/models"
)

type lineView struct {
	Kind  models.LineKind     `json:"kind"`
	Name  string              `json:"name"`
	Grams float64             `json:"grams"`
	Cost  decimal.NullDecimal `json:"cost"`
}

type findingView struct {
	Name    string  `json:"name"`
	Status  string  `json:"status"`
	Needed  float64 `json:"needed_grams"`
	OnHand  float64 `json:"on_hand_grams"`
	Deficit float64 `json:"deficit_grams"`
}

type planView struct {
	Code         string              `json:"code"`
	Version      string              `json:"version"`
	Name         string              `json:"name"`
	VolumeLiters float64             `json:"volume_liters"`
	Lines        []lineView          `json:"lines"`
	Total        decimal.NullDecimal `json:"total_cost"`
	Sufficient   bool                `json:"stock_sufficient"`
	Stock        []findingView       `json:"stock"`
}

func newPlanView(p ledger.Plan) planView {
	view := planView{
		Code:         p.Formulation.Code,
		Version:      p.Formulation.Version().String(),
		Name:         p.Formulation.Name,
		VolumeLiters: p.VolumeLiters,
		Total:        p.Total,
		Sufficient:   p.Stock.Sufficient(),
		Lines:        make([]lineView, len(p.Lines)),
		Stock:        make([]findingView, len(p.Stock.Findings)),
	}
	for i, line := range p.Lines {
		view.Lines[i] = lineView{Kind: line.Kind, Name: line.Name, Grams: line.Grams, Cost: line.Cost}
	}
	for i, finding := range p.Stock.Findings {
		view.Stock[i] = findingView{
			Name:    finding.Name,
			Status:  string(finding.Status),
			Needed:  finding.Needed,
			OnHand:  finding.OnHand,
			Deficit: finding.Deficit,
		}
	}
	return view
}

func money(cost decimal.NullDecimal) string {
	if !cost.Valid {
		return "unknown"
	}
	return "$" + cost.Decimal.StringFixed(4)
}

func writePlan(w io.Writer, p ledger.Plan) error {
	fmt.Fprintf(w, "%s (%s v%s), %g L\n", p.Formulation.Name, p.Formulation.Code, p.Formulation.Version(), p.VolumeLiters)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tGRAMS\tCOST")
	for _, line := range p.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\n", line.Kind, line.Name, line.Grams, money(line.Cost))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Total cost: %s\n", money(p.Total))
	return writeStock(w, p.Stock)
}

func writeStock(w io.Writer, report inventory.Report) error {
	title := cases.Title(language.English)
	if report.Sufficient() {
		fmt.Fprintln(w, "Stock: sufficient")
	} else {
		fmt.Fprintln(w, "Stock: insufficient")
	}
	for _, finding := range report.Shortfalls() {
		fmt.Fprintf(w, "  %s %s: need %.3f g, have %.3f g, short %.3f g\n",
			title.String(string(finding.Status)), finding.Name, finding.Needed, finding.OnHand, finding.Deficit)
	}
	for _, name := range report.Untracked() {
		fmt.Fprintf(w, "  %s %s\n", title.String(string(inventory.StatusUntracked)), name)
	}
	return nil
}

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Plan, record and list production batches",
	}
	cmd.AddCommand(newBatchPlanCmd(a), newBatchRecordCmd(a), newBatchListCmd(a))
	return cmd
}

func (a *app) liters(value float64) float64 {
	if value == 0 {
		return a.cfg.Production.DefaultVolumeLiters
	}
	return value
}

func newBatchPlanCmd(a *app) *cobra.Command {
	var (
		version string
		liters  float64
	)

	cmd := &cobra.Command{
		Use:   "plan <code>",
		Short: "Scale and cost a batch without recording it",
		Long: `Scale a formulation to a batch volume, price every line and check stock.
Nothing is written.

Examples:
  flavorlab batch plan COLA-1 --liters 10
  flavorlab batch plan COLA-1 --version 1.0.0 -j`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := versionFlag(version)
			if err != nil {
				return err
			}
			p, err := a.service.PlanBatch(cmd.Context(), args[0], v, a.liters(liters))
			if err != nil {
				return err
			}
			return a.render(cmd, newPlanView(p), func(w io.Writer) error {
				return writePlan(w, p)
			})
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Formulation version (default latest)")
	cmd.Flags().Float64VarP(&liters, "liters", "l", 0, "Batch volume in liters (default from config)")
	return cmd
}

type batchView struct {
	BatchNumber  string              `json:"batch_number"`
	Code         string              `json:"code,omitempty"`
	Version      string              `json:"version,omitempty"`
	VolumeLiters float64             `json:"volume_liters"`
	Total        decimal.NullDecimal `json:"total_cost"`
	ProducedAt   time.Time           `json:"produced_at"`
	Notes        string              `json:"notes,omitempty"`
}

func newBatchView(run models.BatchRun) batchView {
	view := batchView{
		BatchNumber:  run.BatchNumber,
		VolumeLiters: run.VolumeLiters,
		Total:        run.CostTotal,
		ProducedAt:   run.ProducedAt,
		Notes:        run.Notes,
	}
	if run.Formulation != nil {
		view.Code = run.Formulation.Code
		view.Version = run.Formulation.Version().String()
	}
	return view
}

func newBatchRecordCmd(a *app) *cobra.Command {
	var (
		version string
		liters  float64
		opts    ledger.RecordOptions
	)

	cmd := &cobra.Command{
		Use:   "record <code>",
		Short: "Record a batch and deduct it from stock",
		Long: `Record a production batch of a formulation. The batch number defaults to
{code}-{year}-{seq}. Compound stock is reduced by what the batch used unless
--no-deduct is given.

Examples:
  flavorlab batch record COLA-1 --liters 10
  flavorlab batch record COLA-1 --number COLA-1-2025-900 --require-stock`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := versionFlag(version)
			if err != nil {
				return err
			}
			run, p, err := a.service.RecordBatch(cmd.Context(), args[0], v, a.liters(liters), opts)
			if err != nil {
				return err
			}
			run.Formulation = &p.Formulation

			return a.render(cmd, newBatchView(run), func(w io.Writer) error {
				fmt.Fprintf(w, "Recorded %s: %s v%s, %g L, cost %s\n",
					run.BatchNumber, p.Formulation.Code, p.Formulation.Version(), run.VolumeLiters, money(run.CostTotal))
				if opts.SkipDeduct {
					fmt.Fprintln(w, "Stock not deducted")
				}
				return writeStock(w, p.Stock)
			})
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Formulation version (default latest)")
	cmd.Flags().Float64VarP(&liters, "liters", "l", 0, "Batch volume in liters (default from config)")
	cmd.Flags().StringVar(&opts.BatchNumber, "number", "", "Batch number (default generated)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "Free-form batch notes")
	cmd.Flags().BoolVar(&opts.SkipDeduct, "no-deduct", false, "Do not deduct the batch from stock")
	cmd.Flags().BoolVar(&opts.RequireStock, "require-stock", false, "Refuse to record when a tracked compound is short")
	return cmd
}

func newBatchListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [code]",
		Short: "List recorded batches, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			runs, err := a.service.Store().ListBatches(cmd.Context(), code)
			if err != nil {
				return err
			}

			views := make([]batchView, len(runs))
			for i, run := range runs {
				views[i] = newBatchView(run)
			}
			return a.render(cmd, views, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "BATCH\tVERSION\tLITERS\tCOST\tPRODUCED")
				for _, view := range views {
					fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%s\n",
						view.BatchNumber, view.Version, view.VolumeLiters, money(view.Total), view.ProducedAt.Format(time.DateOnly))
				}
				return tw.Flush()
			})
		},
	}
}
