// Package regulatory resolves the maximum concentration currently allowed
// for a compound and checks recipes against it.
package regulatory

import (
	"context"
	"fmt"
	"time"

	"flavorlab/models"
)

// Provenance says where an active limit came from.
type Provenance string

const (
	ProvenanceOverride Provenance = "override"
	ProvenanceLibrary  Provenance = "library"
	ProvenanceNotFound Provenance = "not found"
)

// Limit is the active limit for one compound. A found limit with PPM == 0
// means no ceiling is established.
type Limit struct {
	CompoundName  string
	PPM           float64
	Provenance    Provenance
	Source        string
	EffectiveDate time.Time
}

// Found reports whether any limit data exists for the compound.
func (l Limit) Found() bool {
	return l.Provenance == ProvenanceOverride || l.Provenance == ProvenanceLibrary
}

// Unlimited reports an explicit "no ceiling" entry.
func (l Limit) Unlimited() bool {
	return l.Found() && l.PPM == 0
}

func (l Limit) String() string {
	switch {
	case !l.Found():
		return fmt.Sprintf("%s: no limit data", l.CompoundName)
	case l.Unlimited():
		return fmt.Sprintf("%s: no established ceiling (%s)", l.CompoundName, l.Provenance)
	default:
		return fmt.Sprintf("%s: %g ppm (%s)", l.CompoundName, l.PPM, l.Provenance)
	}
}

// History gives the newest override for a compound, ordered by effective
// date and then insertion order.
type History interface {
	LatestOverride(ctx context.Context, compoundName string) (models.RegulatoryLimit, bool, error)
}

// Library gives the static library ceiling for a compound.
type Library interface {
	LibraryLimit(ctx context.Context, compoundName string) (ppm float64, found bool, err error)
}

// Resolver layers the override history over the library default.
type Resolver struct {
	history History
	library Library
}

func NewResolver(history History, library Library) *Resolver {
	return &Resolver{history: history, library: library}
}

// ActiveLimit returns the governing limit for name. The newest override wins
// when one exists; otherwise the library value applies. With neither, the
// result has ProvenanceNotFound and a nil error.
func (r *Resolver) ActiveLimit(ctx context.Context, name string) (Limit, error) {
	key := models.CanonicalName(name)
	limit := Limit{CompoundName: key, Provenance: ProvenanceNotFound}

	override, ok, err := r.history.LatestOverride(ctx, key)
	if err != nil {
		return limit, fmt.Errorf("resolve override for %q: %w", key, err)
	}
	if ok {
		limit.PPM = override.MaxUsePPM
		limit.Provenance = ProvenanceOverride
		limit.Source = override.Source
		limit.EffectiveDate = override.EffectiveDate
		return limit, nil
	}

	ppm, found, err := r.library.LibraryLimit(ctx, key)
	if err != nil {
		return limit, fmt.Errorf("resolve library limit for %q: %w", key, err)
	}
	if found {
		limit.PPM = ppm
		limit.Provenance = ProvenanceLibrary
		limit.Source = string(ProvenanceLibrary)
	}
	return limit, nil
}
