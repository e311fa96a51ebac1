package utils

import "math"

// Round2 rounds to 2 decimal places, half away from zero, to match amounts as
// they are stored on bookings and payouts. Rounding happens at every
// intermediate sub-total, never only at the end.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ClampAmount bounds v to the inclusive range [lo, hi].
func ClampAmount(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToPaise converts a rupee amount to integer paise for the gateway, which
// deals exclusively in minor units.
func ToPaise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}

// FromPaise converts gateway paise back to a rupee amount, rounded the same
// way stored amounts are so equality tolerances never see float residue.
func FromPaise(paise int64) float64 {
	return Round2(float64(paise) / 100)
}
