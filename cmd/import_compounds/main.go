package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"flavorlab/internal/config"
	"flavorlab/internal/db"
	applog "flavorlab/internal/log"
	"flavorlab/internal/store"
	"flavorlab/models"
)

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
	listSeparator   = regexp.MustCompile(`[;,|/]`)
)

func main() {
	csvPath := "compound library.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}

	if err := run(csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("locate csv: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return err
	}

	database, err := db.Configure(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close(database)

	summary, err := importFile(context.Background(), store.New(database), csvPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d compounds from %s (%d new, %d updated, %d matched by CAS)\n",
		summary.Total(), filepath.Base(csvPath), summary.Created, summary.Updated, summary.MatchedByCAS)
	return nil
}

type summary struct {
	Created      int
	Updated      int
	MatchedByCAS int
}

func (s summary) Total() int {
	return s.Created + s.Updated
}

// importFile upserts every row of the CSV into the compound library, one
// transaction per row. Rows match existing entries by name, then by CAS
// number; a CAS match keeps the stored name so name-keyed history survives.
func importFile(ctx context.Context, st *store.Store, csvPath string) (summary, error) {
	var result summary

	records, err := readCSV(csvPath)
	if err != nil {
		return result, fmt.Errorf("read csv: %w", err)
	}

	for idx, record := range records {
		compound := buildCompound(record)
		if compound.Name == "" {
			applog.Debug(ctx, "skipping row without a compound name", "row", idx+2)
			continue
		}

		var created, byCAS bool
		if err := st.Transaction(ctx, func(tx *store.Store) error {
			created, byCAS = false, false

			if _, err := tx.CompoundByName(ctx, compound.Name); err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					return err
				}
				if compound.CASNumber != "" {
					existing, err := tx.CompoundByCAS(ctx, compound.CASNumber)
					switch {
					case err == nil:
						applog.Info(ctx, "compound matched by CAS; keeping stored name",
							"cas", compound.CASNumber,
							"stored", existing.Name,
							"incoming", compound.Name,
						)
						compound.Name = existing.Name
						byCAS = true
					case !errors.Is(err, store.ErrNotFound):
						return err
					}
				}
			}

			var err error
			created, err = tx.UpsertCompound(ctx, &compound)
			return err
		}); err != nil {
			return result, fmt.Errorf("record %d (%s): %w", idx+1, record["Compound Name"], err)
		}

		switch {
		case created:
			result.Created++
		default:
			result.Updated++
		}
		if byCAS {
			result.MatchedByCAS++
		}
	}

	return result, nil
}

func readCSV(path string) ([]map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := make([]string, len(rows[0]))
	for idx, key := range rows[0] {
		header[idx] = strings.TrimSpace(strings.TrimPrefix(key, "\ufeff"))
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record := make(map[string]string, len(header))
		for idx, key := range header {
			if idx >= len(row) {
				continue
			}
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}

	return records, nil
}

func buildCompound(row map[string]string) models.CompoundInfo {
	recMin, recMax := parseRange(row["Recommended Range (ppm)"])
	phMin, phMax := parseRange(row["pH Stability"])

	return models.CompoundInfo{
		Name:                  models.CanonicalName(normalizeText(row["Compound Name"])),
		CASNumber:             normalizeCAS(row["CAS Number"]),
		FEMANumber:            normalizeValue(row["FEMA Number"]),
		MaxUsePPM:             parseFirstNumber(row["Max Use (ppm)"]),
		RecommendedMinPPM:     recMin,
		RecommendedMaxPPM:     recMax,
		MolecularWeight:       parseFirstNumber(row["Molecular Weight"]),
		WaterSolubility:       normalizeValue(row["Water Solubility"]),
		PHStabilityMin:        phMin,
		PHStabilityMax:        phMax,
		OdorDescriptors:       normalizeText(row["Odor Descriptors"]),
		FlavorDescriptors:     normalizeText(row["Flavor Descriptors"]),
		OdorThresholdPPM:      parseFirstNumber(row["Odor Threshold (ppm)"]),
		StorageRequirement:    normalizeValue(row["Storage"]),
		RequiresSolubilizer:   parseFlag(row["Requires Solubilizer"]),
		InertAtmosphere:       parseFlag(row["Inert Atmosphere"]),
		CostPerGram:           parseCost(row["Cost per Gram"]),
		ApplicationCategories: models.JoinCategories(listSeparator.Split(normalizeValue(row["Applications"]), -1)),
		Notes:                 normalizeText(row["Notes"]),
	}
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") || value == "-" {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func parseFirstNumber(value string) float64 {
	value = normalizeValue(value)
	if value == "" {
		return 0
	}

	match := numberPattern.FindString(strings.ReplaceAll(value, ",", ""))
	if match == "" {
		return 0
	}

	parsed, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// parseRange reads "5-20", "5 to 20" or a single "12". A single value is
// both ends of the range.
func parseRange(value string) (float64, float64) {
	value = normalizeValue(value)
	if value == "" {
		return 0, 0
	}

	matches := numberPattern.FindAllString(strings.ReplaceAll(value, " to ", " "), -1)
	numbers := make([]float64, 0, 2)
	for _, m := range matches {
		n, err := strconv.ParseFloat(strings.TrimPrefix(m, "-"), 64)
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}

	switch len(numbers) {
	case 0:
		return 0, 0
	case 1:
		return numbers[0], numbers[0]
	default:
		lo, hi := numbers[0], numbers[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi
	}
}

func parseFlag(value string) bool {
	switch strings.ToLower(normalizeValue(value)) {
	case "y", "yes", "true", "1", "required", "x":
		return true
	default:
		return false
	}
}

// parseCost reads a per-gram price such as "$0.05". Blank or unparseable
// values stay null so costing treats them as unknown.
func parseCost(value string) decimal.NullDecimal {
	value = strings.TrimPrefix(normalizeValue(value), "$")
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", ""))
	if value == "" {
		return decimal.NullDecimal{}
	}
	cost, err := decimal.NewFromString(value)
	if err != nil || cost.IsNegative() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(cost)
}

func normalizeCAS(raw string) string {
	value := strings.TrimSpace(raw)
	switch strings.ToUpper(value) {
	case "", "N/A", "NA", "NOT APPLICABLE", "NOT ASSIGNED", "UNKNOWN", "NONE":
		return ""
	}
	return value
}
