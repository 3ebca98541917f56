// Package ledger ties the store to the batch, regulatory, inventory and
// label engines. Each operation runs against one explicitly passed store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"flavorlab/internal/batch"
	"flavorlab/internal/inventory"
	"flavorlab/internal/label"
	applog "flavorlab/internal/log"
	"flavorlab/internal/regulatory"
	"flavorlab/internal/store"
	"flavorlab/models"
)

// ErrInsufficientStock is returned by RecordBatch when stock is required and
// a tracked material is short.
var ErrInsufficientStock = errors.New("ledger: insufficient stock")

// Service is the entry point used by the CLI and importer.
type Service struct {
	store       *store.Store
	containerML float64
}

type Option func(*Service)

// WithContainerML sets the default label container volume.
func WithContainerML(ml float64) Option {
	return func(s *Service) {
		if ml > 0 {
			s.containerML = ml
		}
	}
}

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, containerML: 355}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() *store.Store {
	return s.store
}

func resolver(st *store.Store) *regulatory.Resolver {
	return regulatory.NewResolver(st, st)
}

// ActiveLimit resolves the governing limit for a compound.
func (s *Service) ActiveLimit(ctx context.Context, compound string) (regulatory.Limit, error) {
	return resolver(s.store).ActiveLimit(ctx, compound)
}

// SaveFormulation validates f, runs the advisory limit check and saves it.
// Violations are returned alongside a successful save.
func (s *Service) SaveFormulation(ctx context.Context, f *models.Formulation) ([]regulatory.Violation, error) {
	if err := store.Validate(f); err != nil {
		return nil, err
	}
	violations, err := resolver(s.store).CheckFormulation(ctx, *f)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveFormulation(ctx, f); err != nil {
		return nil, err
	}

	applog.Info(ctx, "formulation saved",
		"code", f.Code,
		"version", f.Version().String(),
		"compounds", len(f.Compounds),
		"violations", len(violations),
	)
	return violations, nil
}

// ReviseFormulation loads the latest version of code, applies edit to a copy
// carrying the next version for tier, and saves the copy.
func (s *Service) ReviseFormulation(ctx context.Context, code string, tier models.Tier, edit func(*models.Formulation) error) (models.Formulation, []regulatory.Violation, error) {
	latest, err := s.store.LatestFormulation(ctx, code)
	if err != nil {
		return models.Formulation{}, nil, err
	}

	next := latest.NextVersion(tier)
	if edit != nil {
		if err := edit(&next); err != nil {
			return models.Formulation{}, nil, err
		}
	}
	next.Code = latest.Code

	violations, err := s.SaveFormulation(ctx, &next)
	if err != nil {
		return models.Formulation{}, nil, err
	}
	return next, violations, nil
}

// SaveSodaBase is SaveFormulation for a base.
func (s *Service) SaveSodaBase(ctx context.Context, b *models.SodaBase) ([]regulatory.Violation, error) {
	if err := store.Validate(b); err != nil {
		return nil, err
	}
	violations, err := resolver(s.store).CheckSodaBase(ctx, *b)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveSodaBase(ctx, b); err != nil {
		return nil, err
	}

	applog.Info(ctx, "soda base saved", "code", b.Code, "version", b.Version().String(), "violations", len(violations))
	return violations, nil
}

// CheckFormulation re-runs the advisory check on a saved version. A nil
// version means the latest.
func (s *Service) CheckFormulation(ctx context.Context, code string, version *models.Version) (models.Formulation, []regulatory.Violation, error) {
	f, err := formulation(ctx, s.store, code, version)
	if err != nil {
		return models.Formulation{}, nil, err
	}
	violations, err := resolver(s.store).CheckFormulation(ctx, f)
	return f, violations, err
}

// Plan is a scaled, priced batch that has not been recorded.
type Plan struct {
	Formulation  models.Formulation
	VolumeLiters float64
	Lines        []batch.Line
	Total        decimal.NullDecimal
	Stock        inventory.Report
}

// PlanBatch scales code at version (nil for latest) to liters, prices the
// lines and checks stock without writing anything.
func (s *Service) PlanBatch(ctx context.Context, code string, version *models.Version, liters float64) (Plan, error) {
	f, err := formulation(ctx, s.store, code, version)
	if err != nil {
		return Plan{}, err
	}
	return plan(ctx, s.store, f, liters)
}

func plan(ctx context.Context, st *store.Store, f models.Formulation, liters float64) (Plan, error) {
	lines, err := batch.ScaleFormulation(f, liters)
	if err != nil {
		return Plan{}, err
	}
	priced, total, err := batch.Cost(ctx, st, lines)
	if err != nil {
		return Plan{}, err
	}
	report, err := inventory.NewLedger(st).Check(ctx, batch.Rows(priced))
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Formulation:  f,
		VolumeLiters: liters,
		Lines:        priced,
		Total:        total,
		Stock:        report,
	}, nil
}

// RecordOptions adjusts how RecordBatch writes a run.
type RecordOptions struct {
	// BatchNumber overrides the automatic number when set.
	BatchNumber  string
	Notes        string
	ProducedAt   time.Time
	SkipDeduct   bool
	RequireStock bool
}

// RecordBatch plans and saves a batch, then deducts its lines from stock.
// The batch rows and the stock changes commit together or not at all.
func (s *Service) RecordBatch(ctx context.Context, code string, version *models.Version, liters float64, opts RecordOptions) (models.BatchRun, Plan, error) {
	var (
		run models.BatchRun
		p   Plan
	)

	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		f, err := formulation(ctx, tx, code, version)
		if err != nil {
			return err
		}
		p, err = plan(ctx, tx, f, liters)
		if err != nil {
			return err
		}
		if opts.RequireStock && !p.Stock.Sufficient() {
			short := p.Stock.Shortfalls()
			names := make([]string, len(short))
			for i, finding := range short {
				names[i] = fmt.Sprintf("%s (%g g short)", finding.Name, finding.Deficit)
			}
			return fmt.Errorf("%w: %s", ErrInsufficientStock, strings.Join(names, ", "))
		}

		run = models.BatchRun{
			BatchNumber:  opts.BatchNumber,
			VolumeLiters: liters,
			CostTotal:    p.Total,
			ProducedAt:   opts.ProducedAt,
			Notes:        opts.Notes,
			Lines:        batch.Rows(p.Lines),
		}
		if _, err := tx.SaveBatch(ctx, f.Code, f.Version(), &run); err != nil {
			return err
		}
		if opts.SkipDeduct {
			return nil
		}
		return inventory.NewLedger(tx).WithClock(tx.Now).Deduct(ctx, run.Lines)
	})
	if err != nil {
		return models.BatchRun{}, Plan{}, err
	}

	applog.Info(ctx, "batch recorded",
		"batch", run.BatchNumber,
		"code", p.Formulation.Code,
		"version", p.Formulation.Version().String(),
		"liters", liters,
		"costKnown", run.CostTotal.Valid,
		"deducted", !opts.SkipDeduct,
	)
	return run, p, nil
}

// LabelOptions override the label inputs derived from the formulation.
type LabelOptions struct {
	ContainerML float64
	Sweetener   string
	Acid        string
	BatchNumber string
}

// ProductionLabel renders the nutrition label for code at version (nil for
// latest). Brix comes from the formulation target; the sweetener and acid
// default to the first linked ingredients in those categories.
func (s *Service) ProductionLabel(ctx context.Context, code string, version *models.Version, opts LabelOptions) (string, error) {
	f, err := formulation(ctx, s.store, code, version)
	if err != nil {
		return "", err
	}

	in := label.Input{
		ProductName: f.Name,
		ContainerML: opts.ContainerML,
		Brix:        f.TargetBrix,
		Sweetener:   opts.Sweetener,
		Acid:        opts.Acid,
		BatchNumber: opts.BatchNumber,
	}
	if in.ContainerML <= 0 {
		in.ContainerML = s.containerML
	}
	if in.Sweetener == "" {
		in.Sweetener = ingredientIn(f, "sweetener")
	}
	if in.Acid == "" {
		in.Acid = ingredientIn(f, "acid")
	}
	return label.Format(in)
}

func ingredientIn(f models.Formulation, category string) string {
	for _, link := range f.Ingredients {
		if link.Ingredient != nil && strings.EqualFold(strings.TrimSpace(link.Ingredient.Category), category) {
			return link.Ingredient.Name
		}
	}
	return ""
}

// RecordTasting stores a tasting against code at version (nil for latest).
func (s *Service) RecordTasting(ctx context.Context, code string, version *models.Version, session *models.TastingSession) error {
	f, err := formulation(ctx, s.store, code, version)
	if err != nil {
		return err
	}
	session.FormulationID = f.ID
	return s.store.SaveTasting(ctx, session)
}

func formulation(ctx context.Context, st *store.Store, code string, version *models.Version) (models.Formulation, error) {
	if version == nil {
		return st.LatestFormulation(ctx, code)
	}
	return st.FormulationVersion(ctx, code, *version)
}
