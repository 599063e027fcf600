package domain

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

// TokenDecimals is the base-unit scale of the governance token
const TokenDecimals = 18

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d+)?$`)

// FormatUnits renders a base-unit integer as a decimal string with trailing
// fractional zeros removed.
func FormatUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	negative := value.Sign() < 0
	digits := new(big.Int).Abs(value).String()

	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	integer := digits[:len(digits)-decimals]
	fraction := strings.TrimRight(digits[len(digits)-decimals:], "0")

	out := integer
	if fraction != "" {
		out += "." + fraction
	}
	if negative {
		out = "-" + out
	}
	return out
}

// ParseDecimal parses a plain decimal number into an exact rational
func ParseDecimal(s string) (*big.Rat, bool) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return nil, false
	}
	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	} else if strings.HasPrefix(s, "-.") {
		s = "-0" + s[1:]
	}
	r, ok := new(big.Rat).SetString(s)
	return r, ok
}

// ValidateAmount checks a requested delegation amount against a balance.
// It fails iff the amount is non-numeric, not positive, or greater than the balance.
// An unparseable balance counts as zero.
func ValidateAmount(amount, balance string) error {
	a, ok := ParseDecimal(amount)
	if !ok || a.Sign() <= 0 {
		return fmt.Errorf("%w: please enter a valid amount", ErrInvalidAmount)
	}

	b, ok := ParseDecimal(balance)
	if !ok {
		b = new(big.Rat)
	}
	if a.Cmp(b) > 0 {
		return fmt.Errorf("%w: amount exceeds your token balance", ErrInvalidAmount)
	}
	return nil
}

// FormatCompact renders a decimal balance as 1.23M, 4.56K or 0.1234
func FormatCompact(balance string) string {
	num, err := strconv.ParseFloat(strings.TrimSpace(balance), 64)
	if err != nil {
		num = 0
	}
	switch {
	case num >= 1_000_000:
		return fmt.Sprintf("%.2fM", num/1_000_000)
	case num >= 1_000:
		return fmt.Sprintf("%.2fK", num/1_000)
	default:
		return fmt.Sprintf("%.4f", num)
	}
}

// FormatVotingPower renders a steward's voting power as 2.71M, 561.9K or 22.66
func FormatVotingPower(power float64) string {
	switch {
	case power >= 1_000_000:
		return fmt.Sprintf("%.2fM", power/1_000_000)
	case power >= 1_000:
		return fmt.Sprintf("%.1fK", power/1_000)
	default:
		return strconv.FormatFloat(power, 'f', -1, 64)
	}
}
