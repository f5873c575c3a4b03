package catalog

import (
	"sort"
	"strconv"
)

// FormatThickness renders a thickness in millimeters the way thickness-keyed
// pricing maps store it: shortest decimal form, so 10 -> "10", 10.5 -> "10.5".
func FormatThickness(mm float64) string {
	return strconv.FormatFloat(mm, 'f', -1, 64)
}

// Snapshot is an immutable read model of the whole catalog. The quoting flow
// only ever reads it; admin writes produce a fresh snapshot via Load.
type Snapshot struct {
	GlassTypes []GlassType
	Categories []ProcessingCategory
	Options    []ProcessingOption
	Tiers      []PricingTier
	Templates  []GlassTemplate
	Suppliers  []Supplier
	Overrides  []CustomerOverride
}

// GlassType finds a glass type by id.
func (s Snapshot) GlassType(id string) (GlassType, bool) {
	for _, gt := range s.GlassTypes {
		if gt.ID == id {
			return gt, true
		}
	}
	return GlassType{}, false
}

// Thickness resolves the thickness entry for an exact glass selection.
func (s Snapshot) Thickness(glassTypeID string, toughened bool, mm float64) (ThicknessEntry, bool) {
	gt, ok := s.GlassType(glassTypeID)
	if !ok {
		return ThicknessEntry{}, false
	}
	for _, v := range gt.Variants {
		if v.Toughened != toughened {
			continue
		}
		for _, te := range v.Thicknesses {
			if te.ThicknessMM == mm {
				return te, true
			}
		}
	}
	return ThicknessEntry{}, false
}

// Option finds a processing option by id.
func (s Snapshot) Option(id string) (ProcessingOption, bool) {
	for _, opt := range s.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return ProcessingOption{}, false
}

// Category finds a processing category by id.
func (s Snapshot) Category(id string) (ProcessingCategory, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return ProcessingCategory{}, false
}

// Template finds a glass template by id.
func (s Snapshot) Template(id string) (GlassTemplate, bool) {
	for _, t := range s.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return GlassTemplate{}, false
}

// TierByKey finds the pricing tier record for a fixed tier key.
func (s Snapshot) TierByKey(k TierKey) (PricingTier, bool) {
	for _, t := range s.Tiers {
		if t.Key == k {
			return t, true
		}
	}
	return PricingTier{}, false
}

// CustomerOverride finds the override record for a customer.
func (s Snapshot) CustomerOverride(customerID string) (CustomerOverride, bool) {
	if customerID == "" {
		return CustomerOverride{}, false
	}
	for _, o := range s.Overrides {
		if o.CustomerID == customerID {
			return o, true
		}
	}
	return CustomerOverride{}, false
}

// CategoriesInOrder returns processing categories sorted by sequence order,
// id as tie-break.
func (s Snapshot) CategoriesInOrder() []ProcessingCategory {
	out := make([]ProcessingCategory, len(s.Categories))
	copy(out, s.Categories)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SequenceOrder != out[j].SequenceOrder {
			return out[i].SequenceOrder < out[j].SequenceOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// OptionsForCategory returns a category's options sorted by display order.
func (s Snapshot) OptionsForCategory(categoryID string) []ProcessingOption {
	out := make([]ProcessingOption, 0)
	for _, opt := range s.Options {
		if opt.CategoryID == categoryID {
			out = append(out, opt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DisplayOrder < out[j].DisplayOrder
	})
	return out
}

// VisibleGlassTypes returns the types the quoting flow may show: active and
// marked complete by the admin.
func (s Snapshot) VisibleGlassTypes() []GlassType {
	out := make([]GlassType, 0)
	for _, gt := range s.GlassTypes {
		if gt.Active && gt.Complete {
			out = append(out, gt)
		}
	}
	return out
}

// HasCompleteGlassType reports whether at least one complete glass type exists.
func (s Snapshot) HasCompleteGlassType() bool {
	for _, gt := range s.GlassTypes {
		if gt.Complete {
			return true
		}
	}
	return false
}

// HasActiveThickness reports whether any active thickness entry exists
// anywhere in the catalog. Gates the edgework admin flow.
func (s Snapshot) HasActiveThickness() bool {
	for _, gt := range s.GlassTypes {
		for _, v := range gt.Variants {
			for _, te := range v.Thicknesses {
				if te.Active {
					return true
				}
			}
		}
	}
	return false
}

// HasActiveSupplier reports whether any active supplier is configured.
// Gates the "other processing" admin flow.
func (s Snapshot) HasActiveSupplier() bool {
	for _, sup := range s.Suppliers {
		if sup.Active {
			return true
		}
	}
	return false
}
