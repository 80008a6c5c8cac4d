// Package pricing converts human-entered prices into the ledger's minor
// currency unit and derives exact per-token prices for fractionalized
// parcels. All arithmetic is integer-based; the ledger never sees a value
// that went through floating point.
package pricing

import (
	"fmt"
	"math/big"
	"strings"

	"land-registry-workflow/internal/domain"
)

// MinorUnitExponent is the chain's fixed decimal exponent: one major unit
// equals 10^18 minor units.
const MinorUnitExponent = 18

var (
	unitScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(MinorUnitExponent), nil)
	two       = big.NewInt(2)
)

// Pricing holds the derived amounts for one registration, in minor units.
type Pricing struct {
	Total    *big.Int // total parcel price
	PerToken *big.Int // price of one token; zero when not tokenized
}

// Compute derives registration pricing from a decimal price string and the
// requested token count. maxTokens is the advisory maximum derived from the
// extracted land area; 0 disables the guard.
//
// When tokenCount > 0, PerToken is round(Total/tokenCount) in minor units.
// The product PerToken*tokenCount may differ from Total by at most
// tokenCount-1 minor units (integer division remainder). That drift is
// accepted and bounded; Total is never adjusted to hide it.
func Compute(totalPrice string, tokenCount, maxTokens int) (*Pricing, error) {
	total, err := ParseAmount(totalPrice)
	if err != nil {
		return nil, err
	}

	if tokenCount < 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidTokenCount, tokenCount)
	}
	if maxTokens > 0 && tokenCount > maxTokens {
		return nil, fmt.Errorf("%w: %d exceeds document limit %d", domain.ErrInvalidTokenCount, tokenCount, maxTokens)
	}

	p := &Pricing{Total: total, PerToken: new(big.Int)}
	if tokenCount > 0 {
		p.PerToken = divRound(total, big.NewInt(int64(tokenCount)))
	}
	return p, nil
}

// ParseAmount converts a decimal major-unit string ("10", "2.5", "0.000001")
// to minor units. Digits beyond the minor-unit exponent are rounded to the
// nearest minor unit, half away from zero. The amount must be positive.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", domain.ErrInvalidPrice)
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPrice, s)
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPrice, s)
		}
	}
	if intPart == "" && fracPart == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPrice, s)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPrice, s)
	}

	// Assemble integer and fractional digits into a single integer scaled by
	// 10^len(fracPart), then rescale to the minor-unit exponent.
	digits := intPart + fracPart
	if digits == "" {
		digits = "0"
	}
	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPrice, s)
	}

	switch excess := len(fracPart) - MinorUnitExponent; {
	case excess < 0:
		value.Mul(value, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-excess)), nil))
	case excess > 0:
		divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(excess)), nil)
		value = divRound(value, divisor)
	}

	if value.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q is not positive", domain.ErrInvalidPrice, s)
	}
	return value, nil
}

// FormatAmount renders non-negative minor units as a decimal major-unit
// string, trimming trailing fractional zeros ("2500000000000000000" -> "2.5").
func FormatAmount(v *big.Int) string {
	if v == nil || v.Sign() == 0 {
		return "0"
	}
	quo, rem := new(big.Int).QuoRem(v, unitScale, new(big.Int))
	out := quo.String()
	if rem.Sign() != 0 {
		frac := fmt.Sprintf("%0*s", MinorUnitExponent, rem.String())
		out += "." + strings.TrimRight(frac, "0")
	}
	return out
}

// divRound returns round(a/b) with ties rounded away from zero. Both
// operands must be non-negative and b must be positive.
func divRound(a, b *big.Int) *big.Int {
	quo, rem := new(big.Int).QuoRem(a, b, new(big.Int))
	if new(big.Int).Mul(rem, two).Cmp(b) >= 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
