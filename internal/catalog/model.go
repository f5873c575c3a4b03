package catalog

import "fmt"

// TierKey identifies one of the four fixed pricing tiers. Labels shown to
// users are customizable via PricingTier; calculations key off these values
// and never off the label.
type TierKey string

const (
	TierT1     TierKey = "t1"
	TierT2     TierKey = "t2"
	TierT3     TierKey = "t3"
	TierRetail TierKey = "retail"
)

// TierKeys lists the fixed tiers in their canonical order.
var TierKeys = []TierKey{TierT1, TierT2, TierT3, TierRetail}

// ValidTierKey reports whether k is one of the four fixed tier keys.
func ValidTierKey(k TierKey) bool {
	switch k {
	case TierT1, TierT2, TierT3, TierRetail:
		return true
	}
	return false
}

// TierPrices holds optional per-square-meter sell prices for a thickness
// entry. A nil field means the tier price has not been configured yet; the
// calculator falls back to the cost price and flags a warning.
type TierPrices struct {
	T1     *float64 `json:"t1,omitempty"`
	T2     *float64 `json:"t2,omitempty"`
	T3     *float64 `json:"t3,omitempty"`
	Retail *float64 `json:"retail,omitempty"`
}

// ForTier returns the configured price for the given tier, or nil if unset.
func (p *TierPrices) ForTier(k TierKey) *float64 {
	if p == nil {
		return nil
	}
	switch k {
	case TierT1:
		return p.T1
	case TierT2:
		return p.T2
	case TierT3:
		return p.T3
	case TierRetail:
		return p.Retail
	}
	return nil
}

// ThicknessEntry is a purchasable sheet: one thickness of one variant.
type ThicknessEntry struct {
	ID           string      `json:"id"`
	SKU          string      `json:"sku"`
	ThicknessMM  float64     `json:"thicknessMm"`
	CostPerSqm   float64     `json:"costPerSqm"`
	LeadTimeDays int         `json:"leadTimeDays"`
	Active       bool        `json:"active"`
	TierPrices   *TierPrices `json:"tierPrices,omitempty"`
}

// ProductVariant groups the thickness entries of one toughening state.
type ProductVariant struct {
	ID          string           `json:"id"`
	GlassTypeID string           `json:"glassTypeId"`
	Toughened   bool             `json:"toughened"`
	Thicknesses []ThicknessEntry `json:"thicknesses"`
}

// GlassType is the top-level glass catalog entry. Incomplete types are admin
// drafts and stay invisible to the quoting flow.
type GlassType struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Active   bool             `json:"active"`
	Complete bool             `json:"complete"`
	Variants []ProductVariant `json:"variants"`
}

// ProcessingCategory orders the processing chain. ThicknessBased marks
// edgework-style categories whose option prices key off glass thickness.
type ProcessingCategory struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ThicknessBased bool   `json:"thicknessBased"`
	SequenceOrder  int    `json:"sequenceOrder"`
}

// PricingUnit says how an option price scales with the panel.
type PricingUnit string

const (
	UnitEach        PricingUnit = "each"
	UnitLinearMeter PricingUnit = "per_linear_meter"
	UnitSqm         PricingUnit = "per_sqm"
)

// PriceTuple is one cost + four tier sell prices.
type PriceTuple struct {
	Cost   float64 `json:"cost"`
	T1     float64 `json:"t1"`
	T2     float64 `json:"t2"`
	T3     float64 `json:"t3"`
	Retail float64 `json:"retail"`
}

// ForTier returns the sell price for the given tier.
func (t PriceTuple) ForTier(k TierKey) float64 {
	switch k {
	case TierT1:
		return t.T1
	case TierT2:
		return t.T2
	case TierT3:
		return t.T3
	default:
		return t.Retail
	}
}

// RangeVariation is one manually selected size bucket of a variation-priced
// option. The label is free text and is never parsed.
type RangeVariation struct {
	Label  string     `json:"label"`
	Prices PriceTuple `json:"prices"`
}

// PricingKind tags which pricing shape an option uses.
type PricingKind string

const (
	PricingFlat       PricingKind = "flat"
	PricingVariations PricingKind = "variations"
	PricingThickness  PricingKind = "thickness"
)

// PricingModel is a tagged union: exactly the field matching Kind is
// populated. Validate enforces this when options are written.
type PricingModel struct {
	Kind       PricingKind           `json:"kind"`
	Flat       *PriceTuple           `json:"flat,omitempty"`
	Variations []RangeVariation      `json:"variations,omitempty"`
	Thickness  map[string]PriceTuple `json:"thickness,omitempty"`
}

// Validate checks that exactly the shape named by Kind is populated.
func (m PricingModel) Validate() error {
	populated := 0
	if m.Flat != nil {
		populated++
	}
	if len(m.Variations) > 0 {
		populated++
	}
	if len(m.Thickness) > 0 {
		populated++
	}
	if populated != 1 {
		return fmt.Errorf("pricing model must populate exactly one shape, got %d", populated)
	}

	switch m.Kind {
	case PricingFlat:
		if m.Flat == nil {
			return fmt.Errorf("pricing kind %q requires flat prices", m.Kind)
		}
	case PricingVariations:
		if len(m.Variations) == 0 {
			return fmt.Errorf("pricing kind %q requires at least one variation", m.Kind)
		}
	case PricingThickness:
		if len(m.Thickness) == 0 {
			return fmt.Errorf("pricing kind %q requires thickness prices", m.Kind)
		}
	default:
		return fmt.Errorf("unknown pricing kind %q", m.Kind)
	}
	return nil
}

// ProcessingOption is one selectable add-on within a category.
type ProcessingOption struct {
	ID           string       `json:"id"`
	CategoryID   string       `json:"categoryId"`
	Name         string       `json:"name"`
	SupplierID   string       `json:"supplierId,omitempty"`
	Unit         PricingUnit  `json:"unit"`
	DisplayOrder int          `json:"displayOrder"`
	Pricing      PricingModel `json:"pricing"`
}

// PricingTier carries the customizable label and discount for a fixed tier key.
type PricingTier struct {
	ID                string   `json:"id"`
	Key               TierKey  `json:"key"`
	Label             string   `json:"label"`
	DiscountPercent   float64  `json:"discountPercent"`
	MinimumOrderValue *float64 `json:"minimumOrderValue,omitempty"`
}

// PriceOverride pins a per-sqm price for one exact glass selection.
type PriceOverride struct {
	GlassTypeID string  `json:"glassTypeId"`
	Toughened   bool    `json:"toughened"`
	ThicknessMM float64 `json:"thicknessMm"`
	PricePerSqm float64 `json:"pricePerSqm"`
}

// CustomerOverride assigns a customer to a tier and optionally pins prices
// that take precedence over the tier price.
type CustomerOverride struct {
	CustomerID string          `json:"customerId"`
	TierID     string          `json:"tierId"`
	Overrides  []PriceOverride `json:"overrides,omitempty"`
}

// ShapeType enumerates template shapes.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
	ShapeCustom    ShapeType = "custom"
)

// GlassTemplate is a pre-defined cut shape. CostMultiplier applies to the
// base glass price only, never to processing.
type GlassTemplate struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Shape                  ShapeType `json:"shape"`
	CostMultiplier         float64   `json:"costMultiplier"`
	AutoOptionIDs          []string  `json:"autoOptionIds,omitempty"`
	CompatibleGlassTypeIDs []string  `json:"compatibleGlassTypeIds,omitempty"`
}

// Supplier provides "other" processing options; at least one active supplier
// must exist before that admin flow opens.
type Supplier struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
