package seed

import (
	"fmt"

	"github.com/paneworks/glassquote/internal/catalog"
)

const (
	demoGlassTypeID  = "gt-clear"
	demoVariantID    = "gv-clear-annealed"
	demoEdgeworkID   = "pc-edgework"
	demoPolishedID   = "po-polished-edge"
	demoSupplierID   = "sup-default"
	demoTemplateID   = "tpl-rectangle"
	demoSupplierName = "Default Supplier"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way: each catalog key is
// written only when absent, so an already-authored catalog is never touched.
func Run(store catalog.Store) (Stats, error) {
	stats := Stats{}

	if err := ensureTiers(store, &stats); err != nil {
		return Stats{}, err
	}
	if err := ensureGlassCatalog(store, &stats); err != nil {
		return Stats{}, err
	}
	if err := ensureProcessing(store, &stats); err != nil {
		return Stats{}, err
	}
	if err := ensureSuppliers(store, &stats); err != nil {
		return Stats{}, err
	}
	if err := ensureTemplates(store, &stats); err != nil {
		return Stats{}, err
	}

	return stats, nil
}

func keyAbsent(store catalog.Store, key string) (bool, error) {
	_, ok, err := store.Get(key)
	if err != nil {
		return false, fmt.Errorf("check catalog key %q: %w", key, err)
	}
	return !ok, nil
}

func ensureTiers(store catalog.Store, stats *Stats) error {
	absent, err := keyAbsent(store, catalog.KeyPricingTiers)
	if err != nil || !absent {
		return err
	}

	tiers := []catalog.PricingTier{
		{ID: "tier-t1", Key: catalog.TierT1, Label: "Trade 1", DiscountPercent: 30},
		{ID: "tier-t2", Key: catalog.TierT2, Label: "Trade 2", DiscountPercent: 20},
		{ID: "tier-t3", Key: catalog.TierT3, Label: "Trade 3", DiscountPercent: 10},
		{ID: "tier-retail", Key: catalog.TierRetail, Label: "Retail", DiscountPercent: 0},
	}
	if err := catalog.SaveTiers(store, tiers); err != nil {
		return err
	}
	stats.Inserts++
	return nil
}

func ensureGlassCatalog(store catalog.Store, stats *Stats) error {
	absent, err := keyAbsent(store, catalog.KeyGlassCatalog)
	if err != nil || !absent {
		return err
	}

	retail := func(v float64) *float64 { return &v }
	types := []catalog.GlassType{{
		ID:       demoGlassTypeID,
		Name:     "Clear Glass",
		Active:   true,
		Complete: true,
		Variants: []catalog.ProductVariant{{
			ID:          demoVariantID,
			GlassTypeID: demoGlassTypeID,
			Toughened:   false,
			Thicknesses: []catalog.ThicknessEntry{
				{ID: "th-clear-6", SKU: "CLR6A", ThicknessMM: 6, CostPerSqm: 80, LeadTimeDays: 3, Active: true, TierPrices: &catalog.TierPrices{Retail: retail(100)}},
				{ID: "th-clear-10", SKU: "CLR10A", ThicknessMM: 10, CostPerSqm: 120, LeadTimeDays: 3, Active: true, TierPrices: &catalog.TierPrices{Retail: retail(150)}},
				{ID: "th-clear-12", SKU: "CLR12A", ThicknessMM: 12, CostPerSqm: 145, LeadTimeDays: 5, Active: true, TierPrices: &catalog.TierPrices{Retail: retail(180)}},
			},
		}},
	}}
	if err := catalog.SaveGlassTypes(store, types); err != nil {
		return err
	}
	stats.Inserts++
	return nil
}

func ensureProcessing(store catalog.Store, stats *Stats) error {
	absent, err := keyAbsent(store, catalog.KeyProcessingCategories)
	if err != nil {
		return err
	}
	if absent {
		categories := []catalog.ProcessingCategory{
			{ID: demoEdgeworkID, Name: "Edgework", ThicknessBased: true, SequenceOrder: 1},
			{ID: "pc-corners", Name: "Corners", SequenceOrder: 2},
			{ID: "pc-holes", Name: "Holes", SequenceOrder: 3},
			{ID: "pc-services", Name: "Services", SequenceOrder: 4},
			{ID: "pc-surface", Name: "Surface Finish", SequenceOrder: 5},
		}
		if err := catalog.SaveCategories(store, categories); err != nil {
			return err
		}
		stats.Inserts++
	}

	absent, err = keyAbsent(store, catalog.KeyProcessingOptions)
	if err != nil || !absent {
		return err
	}

	options := []catalog.ProcessingOption{{
		ID:           demoPolishedID,
		CategoryID:   demoEdgeworkID,
		Name:         "Polished Edge",
		Unit:         catalog.UnitLinearMeter,
		DisplayOrder: 1,
		Pricing: catalog.PricingModel{
			Kind: catalog.PricingThickness,
			Thickness: map[string]catalog.PriceTuple{
				"6":  {Cost: 3, T1: 4, T2: 4.5, T3: 5, Retail: 6},
				"10": {Cost: 4, T1: 5.5, T2: 6, T3: 7, Retail: 8},
				"12": {Cost: 5, T1: 6.5, T2: 7, T3: 8, Retail: 9},
			},
		},
	}, {
		ID:           "po-drill-hole",
		CategoryID:   "pc-holes",
		Name:         "Drilled Hole",
		SupplierID:   demoSupplierID,
		Unit:         catalog.UnitEach,
		DisplayOrder: 1,
		Pricing: catalog.PricingModel{
			Kind: catalog.PricingFlat,
			Flat: &catalog.PriceTuple{Cost: 2, T1: 3, T2: 3.5, T3: 4, Retail: 5},
		},
	}}
	if err := catalog.SaveOptions(store, options); err != nil {
		return err
	}
	stats.Inserts++
	return nil
}

func ensureSuppliers(store catalog.Store, stats *Stats) error {
	absent, err := keyAbsent(store, catalog.KeySuppliers)
	if err != nil || !absent {
		return err
	}

	suppliers := []catalog.Supplier{{ID: demoSupplierID, Name: demoSupplierName, Active: true}}
	if err := catalog.SaveSuppliers(store, suppliers); err != nil {
		return err
	}
	stats.Inserts++
	return nil
}

func ensureTemplates(store catalog.Store, stats *Stats) error {
	absent, err := keyAbsent(store, catalog.KeyTemplates)
	if err != nil || !absent {
		return err
	}

	templates := []catalog.GlassTemplate{{
		ID:             demoTemplateID,
		Name:           "Standard Rectangle",
		Shape:          catalog.ShapeRectangle,
		CostMultiplier: 1,
	}}
	if err := catalog.SaveTemplates(store, templates); err != nil {
		return err
	}
	stats.Inserts++
	return nil
}
