package market

import "math/bits"

// CurrentPrice computes the unit price of a linearly decaying auction at
// time now. The price drops from startingPrice at startAt to reservePrice
// at endAt and stays at the reserve afterwards. Strictly non-increasing
// in now; the interpolation floors, so the curve meets the reserve at
// endAt only up to integer rounding.
func CurrentPrice(startingPrice, reservePrice, startAt, endAt, now uint64) uint64 {
	if now >= endAt {
		return reservePrice
	}
	if now <= startAt {
		return startingPrice
	}

	elapsed := now - startAt
	span := endAt - startAt
	// floor(elapsed * (startingPrice - reservePrice) / span) in 128 bits.
	hi, lo := bits.Mul64(elapsed, startingPrice-reservePrice)
	drop, _ := bits.Div64(hi, lo, span)
	return startingPrice - drop
}
