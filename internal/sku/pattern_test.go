package sku

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paneworks/glassquote/internal/catalog"
)

func TestDetect_ThicknessEmbedded(t *testing.T) {
	p := Detect("CLR10A", 10)

	assert.Equal(t, Pattern{Prefix: "CLR", Suffix: "A", IncludesThickness: true}, p)
}

func TestDetect_RoundsThicknessBeforeMatching(t *testing.T) {
	// 10.4mm rounds to "10" which appears in the code.
	p := Detect("CLR10A", 10.4)

	assert.True(t, p.IncludesThickness)
	assert.Equal(t, "CLR", p.Prefix)
}

func TestDetect_StaticCode(t *testing.T) {
	p := Detect("MIRROR-STD", 6)

	assert.Equal(t, Pattern{Prefix: "MIRROR-STD"}, p)
}

func TestConfirm_RequiresTwoEntries(t *testing.T) {
	_, ok := Confirm([]Entry{{SKU: "CLR10A", ThicknessMM: 10}})

	assert.False(t, ok)
}

func TestConfirm_UnanimousEntries(t *testing.T) {
	p, ok := Confirm([]Entry{
		{SKU: "CLR6A", ThicknessMM: 6},
		{SKU: "CLR10A", ThicknessMM: 10},
		{SKU: "CLR12A", ThicknessMM: 12},
	})

	require.True(t, ok)
	assert.Equal(t, Pattern{Prefix: "CLR", Suffix: "A", IncludesThickness: true}, p)
}

func TestConfirm_RejectsDisagreement(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{
			name: "different prefix",
			entries: []Entry{
				{SKU: "CLR6A", ThicknessMM: 6},
				{SKU: "TGH10A", ThicknessMM: 10},
			},
		},
		{
			name: "different suffix",
			entries: []Entry{
				{SKU: "CLR6A", ThicknessMM: 6},
				{SKU: "CLR10B", ThicknessMM: 10},
			},
		},
		{
			name: "mixed static and templated",
			entries: []Entry{
				{SKU: "CLR6A", ThicknessMM: 6},
				{SKU: "MIRROR-STD", ThicknessMM: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Confirm(tt.entries)
			assert.False(t, ok, "expected no pattern")
		})
	}
}

func TestGenerate_RoundTripsThroughDetect(t *testing.T) {
	patterns := []Pattern{
		{Prefix: "CLR", Suffix: "A", IncludesThickness: true},
		{Prefix: "GL-", Suffix: "-T", IncludesThickness: true},
		{Prefix: "", Suffix: "MM", IncludesThickness: true},
	}

	for _, p := range patterns {
		for _, mm := range []float64{4, 6, 10, 12, 19} {
			code := p.Generate(mm)
			assert.Equal(t, p, Detect(code, mm), "sku %q thickness %v", code, mm)
		}
	}
}

func TestGenerate_StaticIgnoresThickness(t *testing.T) {
	p := Pattern{Prefix: "MIRROR-STD"}

	assert.Equal(t, "MIRROR-STD", p.Generate(6))
	assert.Equal(t, "MIRROR-STD", p.Generate(12))
}

func TestFill_OnlyBlankSKUs(t *testing.T) {
	p := Pattern{Prefix: "CLR", Suffix: "A", IncludesThickness: true}
	entries := []catalog.ThicknessEntry{
		{ID: "a", SKU: "CUSTOM-6", ThicknessMM: 6},
		{ID: "b", SKU: "", ThicknessMM: 10},
		{ID: "c", SKU: "  ", ThicknessMM: 12},
	}

	filled, n := Fill(p, entries)

	assert.Equal(t, 2, n)
	assert.Equal(t, "CUSTOM-6", filled[0].SKU, "manual SKU must never be overwritten")
	assert.Equal(t, "CLR10A", filled[1].SKU)
	assert.Equal(t, "CLR12A", filled[2].SKU)

	// Applying again is a no-op.
	again, n2 := Fill(p, filled)
	assert.Equal(t, 0, n2)
	assert.Equal(t, filled, again)
}
