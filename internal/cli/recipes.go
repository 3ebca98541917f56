package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"flavorlab/internal/regulatory"
	"flavorlab/models"
)

type limitView struct {
	Compound      string     `json:"compound"`
	PPM           *float64   `json:"ppm"`
	Unlimited     bool       `json:"unlimited"`
	Provenance    string     `json:"provenance"`
	Source        string     `json:"source,omitempty"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
}

func newLimitView(l regulatory.Limit) limitView {
	view := limitView{
		Compound:   l.CompoundName,
		Unlimited:  l.Unlimited(),
		Provenance: string(l.Provenance),
		Source:     l.Source,
	}
	if l.Found() && !l.Unlimited() {
		ppm := l.PPM
		view.PPM = &ppm
	}
	if !l.EffectiveDate.IsZero() {
		date := l.EffectiveDate
		view.EffectiveDate = &date
	}
	return view
}

func newLimitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "limit <compound>",
		Short: "Show the limit currently governing a compound",
		Long: `Show the maximum concentration currently allowed for a compound. The newest
regulatory override wins over the compound library value.

Examples:
  flavorlab limit Cinnamaldehyde
  flavorlab limit "d-Limonene" -j`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := a.service.ActiveLimit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, newLimitView(limit), func(w io.Writer) error {
				if _, err := fmt.Fprintln(w, limit.String()); err != nil {
					return err
				}
				if limit.Provenance == regulatory.ProvenanceOverride {
					_, err := fmt.Fprintf(w, "  source %s, effective %s\n", limit.Source, limit.EffectiveDate.Format(time.DateOnly))
					return err
				}
				return nil
			})
		},
	}
}

type violationView struct {
	Compound     string    `json:"compound"`
	RequestedPPM float64   `json:"requested_ppm"`
	Limit        limitView `json:"limit"`
}

func newValidateCmd(a *app) *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "validate <code>",
		Short: "Check a formulation against the active limits",
		Long: `Check every compound of a formulation against its active limit. Violations
are advisory and never stop a save.

Examples:
  flavorlab validate COLA-1
  flavorlab validate COLA-1 --version 1.0.0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := versionFlag(version)
			if err != nil {
				return err
			}
			f, violations, err := a.service.CheckFormulation(cmd.Context(), args[0], v)
			if err != nil {
				return err
			}

			views := make([]violationView, len(violations))
			for i, violation := range violations {
				views[i] = violationView{
					Compound:     violation.CompoundName,
					RequestedPPM: violation.RequestedPPM,
					Limit:        newLimitView(violation.Limit),
				}
			}
			value := map[string]any{
				"code":       f.Code,
				"version":    f.Version().String(),
				"violations": views,
			}
			return a.render(cmd, value, func(w io.Writer) error {
				if len(violations) == 0 {
					_, err := fmt.Fprintf(w, "%s v%s: no violations\n", f.Code, f.Version())
					return err
				}
				fmt.Fprintf(w, "%s v%s: %d violation(s)\n", f.Code, f.Version(), len(violations))
				for _, violation := range violations {
					fmt.Fprintf(w, "  %s at %g ppm exceeds %g ppm (%s)\n",
						violation.CompoundName, violation.RequestedPPM, violation.Limit.PPM, violation.Limit.Provenance)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Formulation version (default latest)")
	return cmd
}

type versionView struct {
	Version    string    `json:"version"`
	Name       string    `json:"name"`
	TargetPH   float64   `json:"target_ph"`
	TargetBrix float64   `json:"target_brix"`
	CreatedAt  time.Time `json:"created_at"`
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <code>",
		Short: "List every saved version of a formulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.service.Store().FormulationHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(history) == 0 {
				return fmt.Errorf("no formulation with code %q", models.CanonicalName(args[0]))
			}

			views := make([]versionView, len(history))
			for i, f := range history {
				views[i] = versionView{
					Version:    f.Version().String(),
					Name:       f.Name,
					TargetPH:   f.TargetPH,
					TargetBrix: f.TargetBrix,
					CreatedAt:  f.CreatedAt,
				}
			}
			return a.render(cmd, views, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tNAME\tPH\tBRIX\tSAVED")
				for _, view := range views {
					fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%s\n",
						view.Version, view.Name, view.TargetPH, view.TargetBrix, view.CreatedAt.Format(time.DateOnly))
				}
				return tw.Flush()
			})
		},
	}
}
