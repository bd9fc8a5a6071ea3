// Package rational compares refresh rates expressed as exact fractions.
//
// Display servers report vertical sync rates as numerator/denominator pairs
// (60000/1001, or a pixel clock over the total pixels per frame). Comparing them
// through float64 division loses exactness, so ordering here is done on reduced
// fractions by cross multiplication.
package rational

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

var (
	// ErrZeroDenominator is returned when a rate has a zero denominator.
	ErrZeroDenominator = errors.New("rational: zero denominator")
	// ErrOutOfRange is returned when a term is math.MinInt64, whose
	// magnitude has no int64 representation.
	ErrOutOfRange = errors.New("rational: term out of range")
)

// Rational is a fraction Num/Den. Values coming from a platform are
// non-negative and are not expected to be reduced. Either term may be any
// int64 except math.MinInt64.
type Rational struct {
	Num int64
	Den int64
}

// New returns the fraction num/den without reducing it.
func New(num, den int64) Rational {
	return Rational{Num: num, Den: den}
}

// Valid reports whether r has a non-zero denominator.
func (r Rational) Valid() bool {
	return r.Den != 0
}

// Reduce divides r by the greatest common divisor of its terms and moves the
// sign onto the numerator, so the result always has a positive denominator.
func Reduce(r Rational) (Rational, error) {
	if r.Den == 0 {
		return Rational{}, ErrZeroDenominator
	}
	if r.Num == math.MinInt64 || r.Den == math.MinInt64 {
		return Rational{}, ErrOutOfRange
	}
	if r.Num == 0 {
		return Rational{Num: 0, Den: 1}, nil
	}

	g := gcd(r.Num, r.Den)
	num, den := r.Num/g, r.Den/g
	if den < 0 {
		num, den = -num, -den
	}
	return Rational{Num: num, Den: den}, nil
}

// LessThan reports whether a < b. Both operands are reduced on private copies
// and compared by cross multiplication in arbitrary precision, so no product
// can overflow. A fraction that does not reduce orders after every valid one.
func LessThan(a, b Rational) bool {
	ra, errA := Reduce(a)
	rb, errB := Reduce(b)
	switch {
	case errA != nil:
		return false
	case errB != nil:
		return true
	}
	return cross(ra, rb) < 0
}

// Equal reports whether a and b reduce to the same fraction. Two invalid
// fractions are equal to each other.
func Equal(a, b Rational) bool {
	ra, errA := Reduce(a)
	rb, errB := Reduce(b)
	if errA != nil || errB != nil {
		return errA != nil && errB != nil
	}
	return ra == rb
}

// Hz returns the rate as a float. Only for display; never order on it.
func (r Rational) Hz() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// cross returns the sign of a.Num*b.Den - b.Num*a.Den.
func cross(a, b Rational) int {
	lhs := new(big.Int).Mul(big.NewInt(a.Num), big.NewInt(b.Den))
	rhs := new(big.Int).Mul(big.NewInt(b.Num), big.NewInt(a.Den))
	return lhs.Cmp(rhs)
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
