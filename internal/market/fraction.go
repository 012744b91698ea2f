package market

import (
	"fmt"
	"math/bits"
)

const fracBits = 32

// Fraction is a rational value in [0, 1) stored as 32-bit fixed point.
// Applying a fraction always rounds down, so fee and royalty never
// over-extract from a payment.
type Fraction struct {
	fp uint64
}

// NewFraction builds a fraction from numerator and denominator. The value
// must be strictly less than one.
func NewFraction(num, den uint64) (Fraction, error) {
	if den == 0 {
		return Fraction{}, fmt.Errorf("%d/%d: zero denominator: %w", num, den, ErrInvalidFraction)
	}
	if num >= den {
		return Fraction{}, fmt.Errorf("%d/%d: %w", num, den, ErrInvalidFraction)
	}
	// (num * 2^32) / den without overflow on large numerators.
	fp, _ := bits.Div64(num>>(64-fracBits), num<<fracBits, den)
	return Fraction{fp: fp}, nil
}

// Apply computes floor(amount * fraction) over the full 128-bit product.
func (f Fraction) Apply(amount uint64) uint64 {
	hi, lo := bits.Mul64(amount, f.fp)
	return hi<<(64-fracBits) | lo>>fracBits
}

// IsZero reports whether the fraction is exactly zero.
func (f Fraction) IsZero() bool {
	return f.fp == 0
}

// Raw exposes the fixed-point representation for persistence.
func (f Fraction) Raw() uint64 {
	return f.fp
}
