package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"flavorlab/internal/db"
	applog "flavorlab/internal/log"
	"flavorlab/models"
)

var sequence atomic.Uint64

// Open returns an empty, migrated in-memory sqlite database. Every call gets
// its own database so parallel tests never share rows.
func Open(ctx context.Context) (*gorm.DB, error) {
	name := fmt.Sprintf("file:flavorlab-mock-%d?mode=memory&cache=shared", sequence.Add(1))
	applog.Debug(ctx, "initialising mock database", "dsn", name)

	database, err := gorm.Open(sqlite.Open(name), db.GormConfig(logger.Silent))
	if err != nil {
		return nil, err
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

// New returns an in-memory sqlite database seeded with a small working lab:
// a compound library, catalog ingredients, the SYR-1 syrup base and the
// COLA-1 formulation.
func New(ctx context.Context) (*gorm.DB, error) {
	database, err := Open(ctx)
	if err != nil {
		return nil, err
	}

	if err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return seed(ctx, tx)
	}); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func price(value string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(value))
}

func seed(ctx context.Context, tx *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")
	now := time.Now().UTC()

	compounds := []models.CompoundInfo{
		{
			Name:                  "Vanillin",
			CASNumber:             "121-33-5",
			FEMANumber:            "3107",
			RecommendedMinPPM:     50,
			RecommendedMaxPPM:     400,
			MolecularWeight:       152.15,
			WaterSolubility:       "10 g/L",
			FlavorDescriptors:     "sweet, creamy, vanilla",
			StorageRequirement:    "cool, dark",
			CostPerGram:           price("0.05"),
			ApplicationCategories: "cola|cream soda|root beer",
		},
		{
			Name:                  "Citral",
			CASNumber:             "5392-40-5",
			FEMANumber:            "2303",
			MaxUsePPM:             40,
			RecommendedMinPPM:     2,
			RecommendedMaxPPM:     20,
			MolecularWeight:       152.24,
			WaterSolubility:       "poor",
			PHStabilityMin:        3,
			PHStabilityMax:        7,
			FlavorDescriptors:     "lemon, sharp",
			RequiresSolubilizer:   true,
			InertAtmosphere:       true,
			CostPerGram:           price("0.12"),
			ApplicationCategories: "citrus|cola",
		},
		{
			Name:                  "d-Limonene",
			CASNumber:             "5989-27-5",
			FEMANumber:            "2633",
			MaxUsePPM:             100,
			RecommendedMaxPPM:     80,
			MolecularWeight:       136.24,
			WaterSolubility:       "insoluble",
			FlavorDescriptors:     "orange peel",
			RequiresSolubilizer:   true,
			CostPerGram:           price("0.02"),
			ApplicationCategories: "citrus|cola",
		},
		{
			Name:                  "Cinnamaldehyde",
			CASNumber:             "104-55-2",
			FEMANumber:            "2286",
			MaxUsePPM:             30,
			RecommendedMaxPPM:     25,
			MolecularWeight:       132.16,
			FlavorDescriptors:     "cinnamon, warm",
			CostPerGram:           price("0.08"),
			ApplicationCategories: "cola|root beer",
		},
		{
			Name:                  "Ethyl Butyrate",
			CASNumber:             "105-54-4",
			FEMANumber:            "2427",
			MaxUsePPM:             50,
			MolecularWeight:       116.16,
			FlavorDescriptors:     "pineapple, fruity",
			ApplicationCategories: "fruit",
			Notes:                 "No current price on file.",
		},
	}
	if err := tx.Create(&compounds).Error; err != nil {
		return err
	}

	supplier := models.Supplier{
		Name:    "Northgate Aromatics",
		Contact: "Priya Anand",
		Email:   "orders@northgate-aromatics.example",
		Website: "https://northgate-aromatics.example",
	}
	if err := tx.Create(&supplier).Error; err != nil {
		return err
	}
	offers := []models.CompoundSupplier{
		{SupplierID: supplier.ID, CompoundName: "Vanillin", SKU: "NA-VAN-100", PricePerGram: decimal.RequireFromString("0.05"), LeadTimeDays: 5},
		{SupplierID: supplier.ID, CompoundName: "Citral", SKU: "NA-CIT-050", PricePerGram: decimal.RequireFromString("0.12"), LeadTimeDays: 12},
	}
	if err := tx.Create(&offers).Error; err != nil {
		return err
	}

	ingredients := []models.Ingredient{
		{Name: "Cane Sugar", Category: "sweetener", Unit: "kg", CostPerUnit: decimal.RequireFromString("1.20"), SupplierID: &supplier.ID},
		{Name: "Citric Acid", Category: "acid", Unit: "kg", CostPerUnit: decimal.RequireFromString("4.50")},
		{Name: "Phosphoric Acid", Category: "acid", Unit: "kg", CostPerUnit: decimal.RequireFromString("3.10")},
		{Name: "Caramel Color", Category: "color", Unit: "g", CostPerUnit: decimal.RequireFromString("0.02")},
		{Name: "Sodium Benzoate", Category: "preservative", Unit: "g", CostPerUnit: decimal.RequireFromString("0.015")},
	}
	if err := tx.Create(&ingredients).Error; err != nil {
		return err
	}
	sugar, phosphoric, caramel := ingredients[0], ingredients[2], ingredients[3]

	syrup := models.SodaBase{
		Code:         "SYR-1",
		Name:         "Simple Syrup",
		YieldLiters:  10,
		Instructions: "Dissolve sugar in warm water 1:1 by weight.",
		Ingredients: []models.SodaBaseIngredient{
			{Position: 0, IngredientID: sugar.ID, Amount: 50, Unit: models.UnitPercent},
		},
	}
	syrup.SetVersion(models.InitialVersion)
	if err := tx.Create(&syrup).Error; err != nil {
		return err
	}

	cola := models.Formulation{
		Code:         "COLA-1",
		Name:         "Classic Cola",
		TargetPH:     2.8,
		TargetBrix:   11,
		Instructions: "Blend base, dose acid and color, add flavor emulsion last.",
		Bases: []models.FormulationBase{
			{Position: 0, SodaBaseID: syrup.ID, Amount: 20, Unit: models.UnitPercent},
		},
		Ingredients: []models.FormulationIngredient{
			{Position: 0, IngredientID: sugar.ID, Amount: 2, Unit: models.UnitPercent},
			{Position: 1, IngredientID: phosphoric.ID, Amount: 0.06, Unit: models.UnitPercent},
			{Position: 2, IngredientID: caramel.ID, Amount: 15, Unit: "g"},
		},
		Compounds: []models.FormulationCompound{
			{Position: 0, CompoundName: "Vanillin", ConcentrationPPM: 200},
			{Position: 1, CompoundName: "Cinnamaldehyde", ConcentrationPPM: 25},
			{Position: 2, CompoundName: "d-Limonene", ConcentrationPPM: 60},
			{Position: 3, CompoundName: "Citral", ConcentrationPPM: 10},
		},
	}
	cola.SetVersion(models.InitialVersion)
	if err := tx.Create(&cola).Error; err != nil {
		return err
	}

	override := models.RegulatoryLimit{
		CompoundName:  "Cinnamaldehyde",
		Source:        "State flavor notice 2024-07",
		MaxUsePPM:     20,
		EffectiveDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := tx.Create(&override).Error; err != nil {
		return err
	}

	stock := []models.InventoryRecord{
		{CompoundName: "Vanillin", StockGrams: 500, ReorderThresholdGrams: 100, LastUpdated: now},
		{CompoundName: "Citral", StockGrams: 20, ReorderThresholdGrams: 25, LastUpdated: now},
		{CompoundName: "d-Limonene", StockGrams: 1000, ReorderThresholdGrams: 200, LastUpdated: now},
		{CompoundName: "Cinnamaldehyde", StockGrams: 5, ReorderThresholdGrams: 10, LastUpdated: now},
	}
	if err := tx.Create(&stock).Error; err != nil {
		return err
	}

	labName, err := json.Marshal("Pilot Kitchen")
	if err != nil {
		return err
	}
	if err := tx.Create(&models.Setting{Key: "lab.name", Value: datatypes.JSON(labName)}).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded")
	return nil
}
