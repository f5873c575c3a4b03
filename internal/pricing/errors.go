package pricing

import "fmt"

// LookupError means a referenced glass type, thickness, option or template is
// missing or inactive. It is fatal to the calculation: the calculator never
// substitutes a different thickness.
type LookupError struct {
	What   string
	Detail string
}

func (e *LookupError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("catalog lookup failed: %s", e.What)
	}
	return fmt.Sprintf("catalog lookup failed: %s (%s)", e.What, e.Detail)
}

// DimensionError means a non-positive width, height or quantity.
type DimensionError struct {
	Field string
	Value float64
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Value)
}

// MarginError means a margin/price conversion outside its defined domain.
type MarginError struct {
	Reason string
}

func (e *MarginError) Error() string {
	return "invalid margin: " + e.Reason
}
