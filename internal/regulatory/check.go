package regulatory

import (
	"context"

	applog "flavorlab/internal/log"
	"flavorlab/models"
)

// Violation is a compound line whose concentration exceeds its active limit.
type Violation struct {
	CompoundName string
	RequestedPPM float64
	Limit        Limit
}

// Line is a compound concentration to check.
type Line struct {
	CompoundName string
	PPM          float64
}

// CheckFormulation is the advisory check run before a formulation is saved.
// Violations are logged at warn level and returned; they never block a save.
// Compounds without limit data are not counted.
func (r *Resolver) CheckFormulation(ctx context.Context, f models.Formulation) ([]Violation, error) {
	lines := make([]Line, 0, len(f.Compounds))
	for _, c := range f.Compounds {
		lines = append(lines, Line{CompoundName: c.CompoundName, PPM: c.ConcentrationPPM})
	}
	return r.Check(ctx, f.Code+" v"+f.Version().String(), lines)
}

// CheckSodaBase applies the same advisory check to a base's compounds.
func (r *Resolver) CheckSodaBase(ctx context.Context, b models.SodaBase) ([]Violation, error) {
	lines := make([]Line, 0, len(b.Compounds))
	for _, c := range b.Compounds {
		lines = append(lines, Line{CompoundName: c.CompoundName, PPM: c.ConcentrationPPM})
	}
	return r.Check(ctx, b.Code+" v"+b.Version().String(), lines)
}

// Check resolves every line and collects those over a present, nonzero
// limit. subject labels the log entries.
func (r *Resolver) Check(ctx context.Context, subject string, lines []Line) ([]Violation, error) {
	var violations []Violation
	for _, line := range lines {
		limit, err := r.ActiveLimit(ctx, line.CompoundName)
		if err != nil {
			return nil, err
		}
		if !limit.Found() || limit.Unlimited() || line.PPM <= limit.PPM {
			continue
		}

		violations = append(violations, Violation{
			CompoundName: limit.CompoundName,
			RequestedPPM: line.PPM,
			Limit:        limit,
		})
		applog.Warn(ctx, "compound exceeds active limit",
			"subject", subject,
			"compound", limit.CompoundName,
			"requestedPPM", line.PPM,
			"limitPPM", limit.PPM,
			"provenance", string(limit.Provenance),
		)
	}
	return violations, nil
}
