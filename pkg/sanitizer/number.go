package sanitizer

import "math"

// NormalizePrice rounds to cents. Negative and NaN prices are left for the
// validator to reject.
func NormalizePrice(price float64) float64 {
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return price
	}
	return math.Round(price*100) / 100
}
