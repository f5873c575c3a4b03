package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paneworks/glassquote/internal/catalog"
)

func ptr(v float64) *float64 { return &v }

func testSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		GlassTypes: []catalog.GlassType{{
			ID:       "gt-clear",
			Name:     "Clear Glass",
			Active:   true,
			Complete: true,
			Variants: []catalog.ProductVariant{{
				ID:          "gv-annealed",
				GlassTypeID: "gt-clear",
				Toughened:   false,
				Thicknesses: []catalog.ThicknessEntry{
					{ID: "th-6", SKU: "CLR6A", ThicknessMM: 6, CostPerSqm: 80, Active: true, TierPrices: &catalog.TierPrices{Retail: ptr(100)}},
					{ID: "th-10", SKU: "CLR10A", ThicknessMM: 10, CostPerSqm: 120, Active: true, TierPrices: &catalog.TierPrices{Retail: ptr(150), T1: ptr(110)}},
					{ID: "th-12", SKU: "CLR12A", ThicknessMM: 12, CostPerSqm: 145, Active: false, TierPrices: &catalog.TierPrices{Retail: ptr(180)}},
				},
			}},
		}},
		Categories: []catalog.ProcessingCategory{
			{ID: "pc-edgework", Name: "Edgework", ThicknessBased: true, SequenceOrder: 1},
			{ID: "pc-holes", Name: "Holes", SequenceOrder: 2},
			{ID: "pc-surface", Name: "Surface Finish", SequenceOrder: 3},
		},
		Options: []catalog.ProcessingOption{
			{
				ID: "po-polished", CategoryID: "pc-edgework", Name: "Polished Edge",
				Unit: catalog.UnitLinearMeter, DisplayOrder: 1,
				Pricing: catalog.PricingModel{
					Kind: catalog.PricingThickness,
					Thickness: map[string]catalog.PriceTuple{
						"6":  {Cost: 3, Retail: 6},
						"10": {Cost: 4, Retail: 8},
					},
				},
			},
			{
				ID: "po-hole", CategoryID: "pc-holes", Name: "Drilled Hole",
				Unit: catalog.UnitEach, DisplayOrder: 1,
				Pricing: catalog.PricingModel{
					Kind: catalog.PricingFlat,
					Flat: &catalog.PriceTuple{Cost: 2, Retail: 5},
				},
			},
			{
				ID: "po-sandblast", CategoryID: "pc-surface", Name: "Sandblasting",
				Unit: catalog.UnitSqm, DisplayOrder: 1,
				Pricing: catalog.PricingModel{
					Kind: catalog.PricingVariations,
					Variations: []catalog.RangeVariation{
						{Label: "up to 1m²", Prices: catalog.PriceTuple{Cost: 10, Retail: 20}},
						{Label: "over 1m²", Prices: catalog.PriceTuple{Cost: 8, Retail: 15}},
					},
				},
			},
		},
		Templates: []catalog.GlassTemplate{
			{ID: "tpl-circle", Name: "Circle", Shape: catalog.ShapeCircle, CostMultiplier: 1.25},
			{ID: "tpl-mirror", Name: "Mirror Only", Shape: catalog.ShapeCustom, CostMultiplier: 1.5, CompatibleGlassTypeIDs: []string{"gt-mirror"}},
		},
		Overrides: []catalog.CustomerOverride{{
			CustomerID: "cust-7",
			TierID:     "tier-t1",
			Overrides: []catalog.PriceOverride{
				{GlassTypeID: "gt-clear", Toughened: false, ThicknessMM: 10, PricePerSqm: 95},
			},
		}},
	}
}

func baseRequest() Request {
	return Request{
		GlassTypeID: "gt-clear",
		Toughened:   false,
		ThicknessMM: 10,
		WidthMM:     1000,
		HeightMM:    2000,
		Quantity:    2,
		Tier:        catalog.TierRetail,
	}
}

func TestCalculate_BaseScenario(t *testing.T) {
	// 1000×2000mm panel => 2m², qty 2 at retail $150/m².
	result, err := Calculate(testSnapshot(), baseRequest())
	require.NoError(t, err)

	assert.InDelta(t, 600, result.BaseTotal, 1e-9)
	assert.InDelta(t, 600, result.Total, 1e-9)
	assert.Zero(t, result.ProcessingTotal)
	assert.Zero(t, result.TemplateCost)
	require.Len(t, result.Lines, 1)
	assert.Empty(t, result.Warnings)
}

func TestCalculate_PolishedEdgeScenario(t *testing.T) {
	// Perimeter = 2*(1+2) = 6m, retail $8/lm at 10mm, qty 2 => 96.
	req := baseRequest()
	req.Selections = []ProcessingSelection{{CategoryID: "pc-edgework", OptionID: "po-polished"}}

	result, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	assert.InDelta(t, 600, result.BaseTotal, 1e-9)
	assert.InDelta(t, 96, result.ProcessingTotal, 1e-9)
	assert.InDelta(t, 696, result.Total, 1e-9)
	require.Len(t, result.Lines, 2)
	assert.Equal(t, "Polished Edge", result.Lines[1].Label)
	assert.Empty(t, result.Lines[1].Warning)
}

func TestCalculate_UnknownThicknessFails(t *testing.T) {
	req := baseRequest()
	req.ThicknessMM = 14

	_, err := Calculate(testSnapshot(), req)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
}

func TestCalculate_InactiveThicknessFails(t *testing.T) {
	req := baseRequest()
	req.ThicknessMM = 12

	_, err := Calculate(testSnapshot(), req)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
}

func TestCalculate_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero width", func(r *Request) { r.WidthMM = 0 }},
		{"negative height", func(r *Request) { r.HeightMM = -5 }},
		{"zero quantity", func(r *Request) { r.Quantity = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := baseRequest()
			tt.mutate(&req)

			_, err := Calculate(testSnapshot(), req)

			var dimErr *DimensionError
			require.ErrorAs(t, err, &dimErr)
		})
	}
}

func TestCalculate_TierFallbackToCostPrice(t *testing.T) {
	// 6mm has no T1 price configured: unit price falls back to cost ($80/m²)
	// and the breakdown flags the gap instead of silently pricing at zero.
	req := baseRequest()
	req.ThicknessMM = 6
	req.Tier = catalog.TierT1

	result, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	assert.InDelta(t, 80*2*2, result.BaseTotal, 1e-9)
	require.NotEmpty(t, result.Warnings)
	assert.NotEmpty(t, result.Lines[0].Warning)
}

func TestCalculate_MissingThicknessPriceWarnsInsteadOfAborting(t *testing.T) {
	// Drop the 6mm key so the selected edgework option has no price for the
	// requested thickness.
	snap := testSnapshot()
	delete(snap.Options[0].Pricing.Thickness, "6")

	req := baseRequest()
	req.ThicknessMM = 6
	req.Selections = []ProcessingSelection{{CategoryID: "pc-edgework", OptionID: "po-polished"}}

	result, err := Calculate(snap, req)
	require.NoError(t, err)

	require.Len(t, result.Lines, 2)
	assert.Zero(t, result.Lines[1].Amount)
	assert.NotEmpty(t, result.Lines[1].Warning)
	assert.Contains(t, result.Warnings, result.Lines[1].Warning)
}

func TestCalculate_UnknownOptionFails(t *testing.T) {
	req := baseRequest()
	req.Selections = []ProcessingSelection{{CategoryID: "pc-edgework", OptionID: "po-nope"}}

	_, err := Calculate(testSnapshot(), req)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
}

func TestCalculate_NoneSelectionSkipsCategory(t *testing.T) {
	req := baseRequest()
	req.Selections = []ProcessingSelection{{CategoryID: "pc-edgework", OptionID: "none"}}

	result, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	assert.Zero(t, result.ProcessingTotal)
	assert.Len(t, result.Lines, 1)
}

func TestCalculate_VariationSelection(t *testing.T) {
	req := baseRequest()
	req.Selections = []ProcessingSelection{{CategoryID: "pc-surface", OptionID: "po-sandblast", Variation: "over 1m²"}}

	result, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	// $15/m² retail × 2m² × qty 2.
	assert.InDelta(t, 60, result.ProcessingTotal, 1e-9)
}

func TestCalculate_UnknownVariationWarnsZero(t *testing.T) {
	req := baseRequest()
	req.Selections = []ProcessingSelection{{CategoryID: "pc-surface", OptionID: "po-sandblast", Variation: "giant"}}

	result, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	assert.Zero(t, result.ProcessingTotal)
	require.Len(t, result.Lines, 2)
	assert.NotEmpty(t, result.Lines[1].Warning)
}

func TestCalculate_FlatEachOption(t *testing.T) {
	req := baseRequest()
	req.Selections = []ProcessingSelection{{CategoryID: "pc-holes", OptionID: "po-hole"}}

	result, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	// $5 each × qty 2, independent of panel size.
	assert.InDelta(t, 10, result.ProcessingTotal, 1e-9)
}

func TestCalculate_TemplateSurcharge(t *testing.T) {
	req := baseRequest()
	req.TemplateID = "tpl-circle"

	result, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	// Multiplier 1.25 on a 600 base => 150 surcharge; processing untouched.
	assert.InDelta(t, 600, result.BaseTotal, 1e-9)
	assert.InDelta(t, 150, result.TemplateCost, 1e-9)
	assert.InDelta(t, 750, result.Total, 1e-9)
}

func TestCalculate_IncompatibleTemplateFails(t *testing.T) {
	req := baseRequest()
	req.TemplateID = "tpl-mirror"

	_, err := Calculate(testSnapshot(), req)

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
}

func TestCalculate_CustomerOverrideBeatsTierPrice(t *testing.T) {
	req := baseRequest()
	req.CustomerID = "cust-7"

	result, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	// Pinned $95/m² instead of retail $150.
	assert.InDelta(t, 95*2*2, result.BaseTotal, 1e-9)
}

func TestCalculate_LinearInQuantity(t *testing.T) {
	req := baseRequest()
	req.Selections = []ProcessingSelection{
		{CategoryID: "pc-edgework", OptionID: "po-polished"},
		{CategoryID: "pc-holes", OptionID: "po-hole"},
	}

	single, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	req.Quantity *= 2
	double, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	assert.InDelta(t, 2*single.BaseTotal, double.BaseTotal, 1e-9)
	assert.InDelta(t, 2*single.ProcessingTotal, double.ProcessingTotal, 1e-9)
	assert.InDelta(t, 2*single.Total, double.Total, 1e-9)
	require.Equal(t, len(single.Lines), len(double.Lines))
	for i := range single.Lines {
		assert.InDelta(t, 2*single.Lines[i].Amount, double.Lines[i].Amount, 1e-9)
	}
}

func TestCalculate_BreakdownSumsToTotal(t *testing.T) {
	req := baseRequest()
	req.TemplateID = "tpl-circle"
	req.Selections = []ProcessingSelection{
		{CategoryID: "pc-edgework", OptionID: "po-polished"},
		{CategoryID: "pc-surface", OptionID: "po-sandblast", Variation: "up to 1m²"},
	}

	result, err := Calculate(testSnapshot(), req)
	require.NoError(t, err)

	var sum float64
	for _, line := range result.Lines {
		sum += line.Amount
	}
	assert.InDelta(t, result.Total, sum, 1e-9)
	assert.InDelta(t, result.Total, result.BaseTotal+result.ProcessingTotal+result.TemplateCost, 1e-9)
}

func TestCalculate_IsPureAcrossCalls(t *testing.T) {
	snap := testSnapshot()
	req := baseRequest()

	first, err := Calculate(snap, req)
	require.NoError(t, err)
	second, err := Calculate(snap, req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLookupErrorMessageNamesSelection(t *testing.T) {
	req := baseRequest()
	req.ThicknessMM = 14

	_, err := Calculate(testSnapshot(), req)
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*LookupError)))
	assert.Contains(t, err.Error(), "14")
}
