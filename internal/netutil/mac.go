package netutil

import (
	"errors"
	"strings"
)

var (
	ErrMACFormat    = errors.New("mac address must contain exactly 12 hexadecimal characters")
	ErrMACReserved  = errors.New("reserved mac address")
	ErrMACMulticast = errors.New("multicast mac address")
)

var reservedMACs = map[string]struct{}{
	"000000000000": {},
	"FFFFFFFFFFFF": {},
	"010000000000": {},
}

// NormalizeMAC accepts "aa:bb:cc:dd:ee:ff", "AA-BB-CC-DD-EE-FF" or
// "aabbccddeeff" and returns the upper-case colon form. Reserved and
// multicast addresses are refused.
func NormalizeMAC(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrMACFormat
	}
	var hex strings.Builder
	hex.Grow(12)
	groups, digits := 0, 0
	var sep rune
	for _, r := range strings.ToUpper(raw) {
		switch {
		case r == ':' || r == '-':
			if digits != 2 || (sep != 0 && r != sep) {
				return "", ErrMACFormat
			}
			sep = r
			groups++
			digits = 0
		case (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F'):
			hex.WriteRune(r)
			digits++
		default:
			return "", ErrMACFormat
		}
	}
	clean := hex.String()
	if len(clean) != 12 {
		return "", ErrMACFormat
	}
	if sep != 0 && (groups != 5 || digits != 2) {
		return "", ErrMACFormat
	}
	if _, ok := reservedMACs[clean]; ok {
		return "", ErrMACReserved
	}
	// I/G bit of the first octet marks group addresses.
	if hexNibble(clean[1])&1 == 1 {
		return "", ErrMACMulticast
	}

	var out strings.Builder
	out.Grow(17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			out.WriteByte(':')
		}
		out.WriteString(clean[i : i+2])
	}
	return out.String(), nil
}

func hexNibble(c byte) byte {
	if c >= 'A' {
		return c - 'A' + 10
	}
	return c - '0'
}
