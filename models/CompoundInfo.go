package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompoundInfo is one entry of the aroma compound reference library. The
// name is the join key used by formulations, batches, inventory and
// regulatory history; renaming an entry orphans rows that refer to the old
// name.
type CompoundInfo struct {
	gorm.Model
	Name                  string              `gorm:"uniqueIndex;not null" json:"name" validate:"required"`
	CASNumber             string              `gorm:"index" json:"cas_number"`
	FEMANumber            string              `json:"fema_number"`
	MaxUsePPM             float64             `gorm:"not null;default:0" json:"max_use_ppm" validate:"gte=0"`
	RecommendedMinPPM     float64             `json:"recommended_min_ppm" validate:"gte=0"`
	RecommendedMaxPPM     float64             `json:"recommended_max_ppm" validate:"gte=0"`
	MolecularWeight       float64             `json:"molecular_weight"`
	WaterSolubility       string              `json:"water_solubility"`
	PHStabilityMin        float64             `json:"ph_stability_min"`
	PHStabilityMax        float64             `json:"ph_stability_max"`
	OdorDescriptors       string              `gorm:"type:text" json:"odor_descriptors"`
	FlavorDescriptors     string              `gorm:"type:text" json:"flavor_descriptors"`
	OdorThresholdPPM      float64             `json:"odor_threshold_ppm"`
	StorageRequirement    string              `json:"storage_requirement"`
	RequiresSolubilizer   bool                `gorm:"not null;default:false" json:"requires_solubilizer"`
	InertAtmosphere       bool                `gorm:"not null;default:false" json:"inert_atmosphere"`
	CostPerGram           decimal.NullDecimal `gorm:"type:decimal(14,6)" json:"cost_per_gram"`
	ApplicationCategories string              `json:"application_categories"`
	Notes                 string              `gorm:"type:text" json:"notes"`
}

// TableName keeps the library in its own table rather than "compound_infos".
func (CompoundInfo) TableName() string {
	return "compound_library"
}

// Unlimited reports whether the library sets no ceiling for the compound.
func (c CompoundInfo) Unlimited() bool {
	return c.MaxUsePPM == 0
}

// Categories splits the pipe-delimited application tag set.
func (c CompoundInfo) Categories() []string {
	return SplitCategories(c.ApplicationCategories)
}

// HasCategory reports whether the compound is tagged with category.
func (c CompoundInfo) HasCategory(category string) bool {
	for _, tag := range c.Categories() {
		if strings.EqualFold(tag, strings.TrimSpace(category)) {
			return true
		}
	}
	return false
}

// SplitCategories parses a pipe-delimited tag set, dropping empty tags.
func SplitCategories(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, "|")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinCategories renders tags back into the stored pipe-delimited form.
func JoinCategories(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, tag := range tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			clean = append(clean, trimmed)
		}
	}
	return strings.Join(clean, "|")
}

// CanonicalName normalises a compound or ingredient name into the key used
// for every name-keyed lookup.
func CanonicalName(name string) string {
	return strings.TrimSpace(name)
}
