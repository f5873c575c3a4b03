// Package sku infers templated product-code patterns from already-entered
// SKU/thickness pairs and generates codes for new thicknesses. Detection is
// advisory: nothing is written until the admin accepts a confirmed pattern.
package sku

import (
	"math"
	"strconv"
	"strings"

	"github.com/paneworks/glassquote/internal/catalog"
)

// Pattern describes how a SKU encodes (or doesn't encode) the thickness.
type Pattern struct {
	Prefix            string `json:"prefix"`
	Suffix            string `json:"suffix"`
	IncludesThickness bool   `json:"includesThickness"`
}

// Entry is one observed SKU/thickness pair.
type Entry struct {
	SKU         string  `json:"sku"`
	ThicknessMM float64 `json:"thicknessMm"`
}

func thicknessText(mm float64) string {
	return strconv.Itoa(int(math.Round(mm)))
}

// Detect derives the pattern of a single SKU. If the rounded thickness appears
// as a substring, the text around it forms a thickness-including pattern;
// otherwise the whole SKU is a static, thickness-independent code.
func Detect(skuCode string, thicknessMM float64) Pattern {
	needle := thicknessText(thicknessMM)
	idx := strings.Index(skuCode, needle)
	if idx < 0 {
		return Pattern{Prefix: skuCode}
	}
	return Pattern{
		Prefix:            skuCode[:idx],
		Suffix:            skuCode[idx+len(needle):],
		IncludesThickness: true,
	}
}

// Confirm returns a pattern only when at least two entries are given and
// every entry detects the identical pattern. There is no partial or majority
// matching; any disagreement means no pattern.
func Confirm(entries []Entry) (Pattern, bool) {
	if len(entries) < 2 {
		return Pattern{}, false
	}

	first := Detect(entries[0].SKU, entries[0].ThicknessMM)
	for _, e := range entries[1:] {
		if Detect(e.SKU, e.ThicknessMM) != first {
			return Pattern{}, false
		}
	}
	return first, true
}

// Generate builds the SKU for a thickness from an accepted pattern. Static
// patterns return the prefix unchanged regardless of thickness.
func (p Pattern) Generate(thicknessMM float64) string {
	if !p.IncludesThickness {
		return p.Prefix
	}
	return p.Prefix + thicknessText(thicknessMM) + p.Suffix
}

// Fill applies an accepted pattern to a variant's thickness entries, setting
// only SKUs that are currently blank. Manually entered SKUs are never
// overwritten, which makes repeated application a no-op. Returns the entries
// and how many were filled.
func Fill(p Pattern, entries []catalog.ThicknessEntry) ([]catalog.ThicknessEntry, int) {
	out := make([]catalog.ThicknessEntry, len(entries))
	copy(out, entries)

	filled := 0
	for i := range out {
		if strings.TrimSpace(out[i].SKU) != "" {
			continue
		}
		out[i].SKU = p.Generate(out[i].ThicknessMM)
		filled++
	}
	return out, filled
}
