package profile

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidWallet = errors.New("invalid or missing wallet address")

var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// NormalizeWallet lowercases raw and reports whether it is a 0x-prefixed
// 40 hex digit address.
func NormalizeWallet(raw string) (string, bool) {
	addr := strings.ToLower(raw)
	return addr, walletPattern.MatchString(addr)
}
