// Package privacy reduces personal data before it reaches logs and audit
// events.
package privacy

import (
	"net/netip"
	"strings"
)

const (
	ipv4KeepBits = 24
	ipv6KeepBits = 48
)

// AnonymizeIP zeroes the host part of an address, keeping a /24 for IPv4 and
// a /48 for IPv6. IPv4-mapped IPv6 addresses are treated as IPv4. Empty input
// yields "unknown" and unparseable input "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")

	bits := ipv6KeepBits
	if addr.Is4() {
		bits = ipv4KeepBits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// MaskEmail keeps the first character of the local part and the domain:
// "jane.doe@example.com" becomes "j***@example.com".
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "invalid"
	}
	return email[:1] + "***" + email[at:]
}
