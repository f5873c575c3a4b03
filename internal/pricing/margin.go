package pricing

import "fmt"

// PriceFromMargin computes the sell price that yields the given margin over
// cost. Defined only for margins in [0, 100); anything else would produce an
// infinite or negative price and is rejected.
func PriceFromMargin(cost, marginPercent float64) (float64, error) {
	if marginPercent < 0 || marginPercent >= 100 {
		return 0, &MarginError{Reason: fmt.Sprintf("margin %v%% must be in [0, 100)", marginPercent)}
	}
	return cost / (1 - marginPercent/100), nil
}

// MarginFromPrice computes the margin percentage a sell price carries over
// cost. Defined only for positive prices.
func MarginFromPrice(cost, price float64) (float64, error) {
	if price <= 0 {
		return 0, &MarginError{Reason: fmt.Sprintf("price %v must be greater than 0", price)}
	}
	return (price - cost) / price * 100, nil
}
