package helpers

import (
	"strings"
)

// IsAddressValid checks if the provided string is a valid Ethereum address
// It verifies:
// 1. The address is exactly 42 characters long (including 0x prefix)
// 2. The address starts with "0x"
// 3. The remaining 40 characters are valid hexadecimal
func IsAddressValid(address string) bool {
	if len(address) != 42 {
		return false
	}

	if !strings.HasPrefix(address, "0x") {
		return false
	}

	return isHex(address[2:])
}

// IsPrivateKeyValid checks that key is a 0x-prefixed 32 byte hex string.
func IsPrivateKeyValid(key string) bool {
	if len(key) != 66 || !strings.HasPrefix(key, "0x") {
		return false
	}
	return isHex(key[2:])
}

// SameAddress compares two hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
