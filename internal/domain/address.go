package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ZeroAddress is the on-chain "no delegate" sentinel
var ZeroAddress = common.Address{}

// IsValidAddress reports whether s is a 0x-prefixed 40 hex digit address
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// NormalizeAddress validates s and returns it as a checksummed address
func NormalizeAddress(s string) (common.Address, error) {
	if !IsValidAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// SameAddress compares two optional addresses
func SameAddress(a, b *common.Address) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ShortAddress renders an address as 0x1234...abcd
func ShortAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// EqualAddressFold compares two hex addresses ignoring case
func EqualAddressFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
