// Package export renders the current catalog as an XLSX price list for
// offline review by the sales team.
package export

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/paneworks/glassquote/internal/catalog"
)

const (
	glassSheet      = "Glass"
	processingSheet = "Processing"
)

// PriceList builds a workbook with one sheet of glass tier prices and one of
// processing options. The caller owns closing the file.
func PriceList(snap catalog.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), glassSheet)
	if err := writeGlassSheet(f, snap); err != nil {
		_ = f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(processingSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create processing sheet: %w", err)
	}
	if err := writeProcessingSheet(f, snap); err != nil {
		_ = f.Close()
		return nil, err
	}

	return f, nil
}

func writeGlassSheet(f *excelize.File, snap catalog.Snapshot) error {
	header := []any{"Glass Type", "Toughened", "Thickness (mm)", "SKU", "Cost/m²", "T1", "T2", "T3", "Retail", "Lead Days", "Active"}
	if err := writeRow(f, glassSheet, 1, header); err != nil {
		return err
	}

	row := 2
	for _, gt := range snap.GlassTypes {
		for _, v := range gt.Variants {
			for _, te := range v.Thicknesses {
				values := []any{
					gt.Name,
					v.Toughened,
					te.ThicknessMM,
					te.SKU,
					te.CostPerSqm,
					tierCell(te.TierPrices.ForTier(catalog.TierT1)),
					tierCell(te.TierPrices.ForTier(catalog.TierT2)),
					tierCell(te.TierPrices.ForTier(catalog.TierT3)),
					tierCell(te.TierPrices.ForTier(catalog.TierRetail)),
					te.LeadTimeDays,
					te.Active,
				}
				if err := writeRow(f, glassSheet, row, values); err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}

func writeProcessingSheet(f *excelize.File, snap catalog.Snapshot) error {
	header := []any{"Category", "Option", "Unit", "Pricing", "Cost", "Retail"}
	if err := writeRow(f, processingSheet, 1, header); err != nil {
		return err
	}

	row := 2
	for _, category := range snap.CategoriesInOrder() {
		for _, opt := range snap.OptionsForCategory(category.ID) {
			for _, line := range pricingRows(opt) {
				values := []any{category.Name, opt.Name, string(opt.Unit), line.label, line.cost, line.retail}
				if err := writeRow(f, processingSheet, row, values); err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}

type pricingRow struct {
	label        string
	cost, retail float64
}

func pricingRows(opt catalog.ProcessingOption) []pricingRow {
	switch opt.Pricing.Kind {
	case catalog.PricingFlat:
		if opt.Pricing.Flat == nil {
			return nil
		}
		return []pricingRow{{label: "flat", cost: opt.Pricing.Flat.Cost, retail: opt.Pricing.Flat.Retail}}
	case catalog.PricingVariations:
		rows := make([]pricingRow, 0, len(opt.Pricing.Variations))
		for _, v := range opt.Pricing.Variations {
			rows = append(rows, pricingRow{label: v.Label, cost: v.Prices.Cost, retail: v.Prices.Retail})
		}
		return rows
	case catalog.PricingThickness:
		rows := make([]pricingRow, 0, len(opt.Pricing.Thickness))
		for _, key := range sortedKeys(opt.Pricing.Thickness) {
			tuple := opt.Pricing.Thickness[key]
			rows = append(rows, pricingRow{label: key + "mm", cost: tuple.Cost, retail: tuple.Retail})
		}
		return rows
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("compute cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d on %s: %w", row, sheet, err)
	}
	return nil
}

func sortedKeys(m map[string]catalog.PriceTuple) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.ParseFloat(keys[i], 64)
		b, _ := strconv.ParseFloat(keys[j], 64)
		return a < b
	})
	return keys
}

func tierCell(price *float64) any {
	if price == nil {
		return ""
	}
	return *price
}
