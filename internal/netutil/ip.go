package netutil

import (
	"net/netip"
	"strings"
	"unicode/utf8"
)

const MaxUserAgentLength = 512

// NormalizeIP returns the canonical address of a bare IP or an "ip:port" /
// "[ip]:port" pair, without zone. ok is false when nothing parses.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if ap, err := netip.ParseAddrPort(raw); err == nil {
		return ap.Addr().WithZone("").String(), true
	}
	host := raw
	if strings.HasPrefix(host, "[") {
		if end := strings.LastIndex(host, "]"); end > 0 {
			host = host[1:end]
		}
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.WithZone("").String(), true
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		if addr, err := netip.ParseAddr(host[:idx]); err == nil {
			return addr.WithZone("").String(), true
		}
	}
	return raw, false
}

// TruncateUserAgent keeps at most MaxUserAgentLength runes.
func TruncateUserAgent(ua string) string {
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	n := 0
	for i := range ua {
		if n == MaxUserAgentLength {
			return ua[:i]
		}
		n++
	}
	return ua
}
