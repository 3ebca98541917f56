package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"flavorlab/models"
)

// scoreFlags are the optional 1-10 scores. A flag left unset is stored as
// not scored rather than zero.
var scoreFlags = []string{"sweetness", "acidity", "carbonation", "aroma", "aftertaste"}

func newTasteCmd(a *app) *cobra.Command {
	var (
		version string
		overall int
		taster  string
		notes   string
		scores  = make(map[string]*int, len(scoreFlags))
	)

	cmd := &cobra.Command{
		Use:   "taste <code>",
		Short: "Record a tasting of a formulation version",
		Long: `Record a tasting session against one formulation version. Only the overall
score is required; the other scores are optional.

Examples:
  flavorlab taste COLA-1 --overall 8
  flavorlab taste COLA-1 --version 1.0.0 --overall 6 --sweetness 9 --notes "too sweet"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := versionFlag(version)
			if err != nil {
				return err
			}

			session := models.TastingSession{
				Taster:       taster,
				OverallScore: overall,
				Notes:        notes,
			}
			for _, name := range scoreFlags {
				if !cmd.Flags().Changed(name) {
					continue
				}
				score := models.Score(*scores[name])
				switch name {
				case "sweetness":
					session.Sweetness = score
				case "acidity":
					session.Acidity = score
				case "carbonation":
					session.Carbonation = score
				case "aroma":
					session.Aroma = score
				case "aftertaste":
					session.Aftertaste = score
				}
			}

			if err := a.service.RecordTasting(cmd.Context(), args[0], v, &session); err != nil {
				return err
			}
			average, count, err := a.service.Store().AverageOverall(cmd.Context(), session.FormulationID)
			if err != nil {
				return err
			}

			value := map[string]any{
				"session":         session,
				"average_overall": average,
				"sessions":        count,
			}
			return a.render(cmd, value, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Recorded tasting %d (overall %d); average overall %.1f over %d session(s)\n",
					session.ID, session.OverallScore, average, count)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Formulation version (default latest)")
	cmd.Flags().IntVar(&overall, "overall", 0, "Overall score, 1-10")
	cmd.Flags().StringVar(&taster, "taster", "", "Who tasted")
	cmd.Flags().StringVar(&notes, "notes", "", "Tasting notes")
	for _, name := range scoreFlags {
		scores[name] = new(int)
		cmd.Flags().IntVar(scores[name], name, 0, fmt.Sprintf("%s score, 1-10", name))
	}
	_ = cmd.MarkFlagRequired("overall")
	return cmd
}
