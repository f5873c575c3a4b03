// Package pricing turns a glass selection plus a catalog snapshot into a
// deterministic price breakdown. Calculation is pure: it never touches the
// store and is safe to run on every keystroke.
package pricing

import (
	"fmt"

	"github.com/paneworks/glassquote/internal/catalog"
)

// ProcessingSelection is the customer's choice for one processing category.
// An empty or "none" option id means the category was reviewed and skipped.
// Variation carries the manually chosen range label for variation-priced
// options; range labels are free text and are never parsed.
type ProcessingSelection struct {
	CategoryID string `json:"categoryId"`
	OptionID   string `json:"optionId"`
	Variation  string `json:"variation,omitempty"`
}

// Request is one price calculation input.
type Request struct {
	GlassTypeID string                `json:"glassTypeId"`
	Toughened   bool                  `json:"toughened"`
	ThicknessMM float64               `json:"thicknessMm"`
	WidthMM     float64               `json:"widthMm"`
	HeightMM    float64               `json:"heightMm"`
	Quantity    int                   `json:"quantity"`
	Tier        catalog.TierKey       `json:"customerTier"`
	CustomerID  string                `json:"customerId,omitempty"`
	Selections  []ProcessingSelection `json:"processingSelections,omitempty"`
	TemplateID  string                `json:"templateId,omitempty"`
}

// Line is one cost contributor in the breakdown. A non-empty Warning flags a
// configuration gap (missing tier price, missing thickness key) that the
// calculation recovered from.
type Line struct {
	Label    string  `json:"label"`
	Category string  `json:"category,omitempty"`
	Amount   float64 `json:"amount"`
	Warning  string  `json:"warning,omitempty"`
}

// Result is the full breakdown. The lines are part of the contract: summing
// base, processing and template lines reproduces Total.
type Result struct {
	BaseTotal       float64  `json:"baseTotal"`
	ProcessingTotal float64  `json:"processingTotal"`
	TemplateCost    float64  `json:"templateCost"`
	Total           float64  `json:"total"`
	Lines           []Line   `json:"breakdown"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Calculate prices one configured panel against the catalog snapshot.
func Calculate(snap catalog.Snapshot, req Request) (Result, error) {
	entry, ok := snap.Thickness(req.GlassTypeID, req.Toughened, req.ThicknessMM)
	if !ok {
		return Result{}, &LookupError{
			What:   "thickness entry",
			Detail: fmt.Sprintf("glass type %q toughened=%v thickness %smm", req.GlassTypeID, req.Toughened, catalog.FormatThickness(req.ThicknessMM)),
		}
	}
	if !entry.Active {
		return Result{}, &LookupError{
			What:   "thickness entry",
			Detail: fmt.Sprintf("entry %q is inactive", entry.ID),
		}
	}

	if req.WidthMM <= 0 {
		return Result{}, &DimensionError{Field: "width", Value: req.WidthMM}
	}
	if req.HeightMM <= 0 {
		return Result{}, &DimensionError{Field: "height", Value: req.HeightMM}
	}
	if req.Quantity <= 0 {
		return Result{}, &DimensionError{Field: "quantity", Value: float64(req.Quantity)}
	}

	tier := req.Tier
	if !catalog.ValidTierKey(tier) {
		tier = catalog.TierRetail
	}

	areaSqm := (req.WidthMM / 1000) * (req.HeightMM / 1000)
	perimeterM := 2 * (req.WidthMM + req.HeightMM) / 1000
	qty := float64(req.Quantity)

	var result Result

	unitPrice, baseWarning := resolveUnitPrice(snap, req, entry, tier)
	result.BaseTotal = unitPrice * areaSqm * qty

	gt, _ := snap.GlassType(req.GlassTypeID)
	baseLine := Line{
		Label:   fmt.Sprintf("%s %smm × %d", gt.Name, catalog.FormatThickness(req.ThicknessMM), req.Quantity),
		Amount:  result.BaseTotal,
		Warning: baseWarning,
	}
	result.Lines = append(result.Lines, baseLine)
	if baseWarning != "" {
		result.Warnings = append(result.Warnings, baseWarning)
	}

	lines, processingTotal, err := processingLines(snap, req, tier, areaSqm, perimeterM, qty)
	if err != nil {
		return Result{}, err
	}
	result.ProcessingTotal = processingTotal
	for _, line := range lines {
		result.Lines = append(result.Lines, line)
		if line.Warning != "" {
			result.Warnings = append(result.Warnings, line.Warning)
		}
	}

	if req.TemplateID != "" {
		tpl, ok := snap.Template(req.TemplateID)
		if !ok {
			return Result{}, &LookupError{What: "template", Detail: req.TemplateID}
		}
		if !templateCompatible(tpl, req.GlassTypeID) {
			return Result{}, &LookupError{
				What:   "template",
				Detail: fmt.Sprintf("%q is not compatible with glass type %q", tpl.ID, req.GlassTypeID),
			}
		}
		result.TemplateCost = result.BaseTotal * (tpl.CostMultiplier - 1)
		result.Lines = append(result.Lines, Line{
			Label:  fmt.Sprintf("Template: %s", tpl.Name),
			Amount: result.TemplateCost,
		})
	}

	result.Total = result.BaseTotal + result.ProcessingTotal + result.TemplateCost
	return result, nil
}

// resolveUnitPrice applies the price precedence: customer price override,
// then tier price, then cost price (flagged as a configuration warning).
func resolveUnitPrice(snap catalog.Snapshot, req Request, entry catalog.ThicknessEntry, tier catalog.TierKey) (float64, string) {
	if override, ok := snap.CustomerOverride(req.CustomerID); ok {
		for _, po := range override.Overrides {
			if po.GlassTypeID == req.GlassTypeID && po.Toughened == req.Toughened && po.ThicknessMM == req.ThicknessMM {
				return po.PricePerSqm, ""
			}
		}
	}

	if price := entry.TierPrices.ForTier(tier); price != nil {
		return *price, ""
	}

	warning := fmt.Sprintf("no %s price configured for SKU %q; using cost price", tier, entry.SKU)
	return entry.CostPerSqm, warning
}

func processingLines(snap catalog.Snapshot, req Request, tier catalog.TierKey, areaSqm, perimeterM, qty float64) ([]Line, float64, error) {
	selected := make(map[string]ProcessingSelection, len(req.Selections))
	for _, sel := range req.Selections {
		selected[sel.CategoryID] = sel
	}

	autoByCategory := make(map[string]string)
	if req.TemplateID != "" {
		if tpl, ok := snap.Template(req.TemplateID); ok {
			for _, optID := range tpl.AutoOptionIDs {
				if opt, ok := snap.Option(optID); ok {
					autoByCategory[opt.CategoryID] = opt.ID
				}
			}
		}
	}

	var lines []Line
	var total float64
	for _, category := range snap.CategoriesInOrder() {
		sel, explicit := selected[category.ID]
		if !explicit || sel.OptionID == "" || sel.OptionID == "none" {
			// Template auto-options only apply where the customer made no
			// explicit choice.
			autoID, hasAuto := autoByCategory[category.ID]
			if explicit || !hasAuto {
				continue
			}
			sel = ProcessingSelection{CategoryID: category.ID, OptionID: autoID}
		}

		opt, ok := snap.Option(sel.OptionID)
		if !ok || opt.CategoryID != category.ID {
			return nil, 0, &LookupError{
				What:   "processing option",
				Detail: fmt.Sprintf("%q in category %q", sel.OptionID, category.ID),
			}
		}

		rate, warning := resolveRate(opt, sel, req.ThicknessMM, tier)
		amount := scaleRate(rate, opt.Unit, areaSqm, perimeterM, qty)
		total += amount
		lines = append(lines, Line{
			Label:    opt.Name,
			Category: category.Name,
			Amount:   amount,
			Warning:  warning,
		})
	}

	return lines, total, nil
}

// resolveRate picks the per-unit rate from the option's pricing model. Gaps
// in thickness-keyed or variation pricing contribute zero with a warning
// instead of aborting the whole calculation.
func resolveRate(opt catalog.ProcessingOption, sel ProcessingSelection, thicknessMM float64, tier catalog.TierKey) (float64, string) {
	switch opt.Pricing.Kind {
	case catalog.PricingFlat:
		if opt.Pricing.Flat == nil {
			return 0, fmt.Sprintf("option %q has no flat prices configured", opt.Name)
		}
		return opt.Pricing.Flat.ForTier(tier), ""

	case catalog.PricingThickness:
		key := catalog.FormatThickness(thicknessMM)
		tuple, ok := opt.Pricing.Thickness[key]
		if !ok {
			return 0, fmt.Sprintf("option %q has no price for thickness %smm", opt.Name, key)
		}
		return tuple.ForTier(tier), ""

	case catalog.PricingVariations:
		if sel.Variation == "" && len(opt.Pricing.Variations) == 1 {
			return opt.Pricing.Variations[0].Prices.ForTier(tier), ""
		}
		for _, v := range opt.Pricing.Variations {
			if v.Label == sel.Variation {
				return v.Prices.ForTier(tier), ""
			}
		}
		return 0, fmt.Sprintf("option %q has no variation %q", opt.Name, sel.Variation)
	}

	return 0, fmt.Sprintf("option %q has unknown pricing kind %q", opt.Name, opt.Pricing.Kind)
}

func scaleRate(rate float64, unit catalog.PricingUnit, areaSqm, perimeterM, qty float64) float64 {
	switch unit {
	case catalog.UnitSqm:
		return rate * areaSqm * qty
	case catalog.UnitLinearMeter:
		return rate * perimeterM * qty
	default:
		return rate * qty
	}
}

func templateCompatible(tpl catalog.GlassTemplate, glassTypeID string) bool {
	if len(tpl.CompatibleGlassTypeIDs) == 0 {
		return true
	}
	for _, id := range tpl.CompatibleGlassTypeIDs {
		if id == glassTypeID {
			return true
		}
	}
	return false
}
