package domain

// Money is an amount in the currency's minor units. Prices never pass
// through floating point.
type Money int64

// ApplyPercent returns m scaled by (100+percent)/100 with half-up
// rounding on the division.
func (m Money) ApplyPercent(percent int64) Money {
	return Money(roundHalfUpDiv(int64(m)*(100+percent), 100))
}

// roundHalfUpDiv divides num by den rounding half away from zero.
// den must be positive.
func roundHalfUpDiv(num, den int64) int64 {
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}
