package domain

import (
	"fmt"
	"strings"
)

// MAC is a 48-bit hardware address split into its six octets.
// Each octet holds exactly two lowercase hex digits.
type MAC [6]string

// ParseMAC parses a colon-separated MAC address ("1C:A0:EF:01:02:C0").
// The result is normalized to lowercase.
func ParseMAC(s string) (MAC, error) {
	var mac MAC

	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != len(mac) {
		return mac, fmt.Errorf("invalid MAC address %q: want 6 octets, got %d", s, len(parts))
	}

	for i, part := range parts {
		if len(part) != 2 || !isHex(part[0]) || !isHex(part[1]) {
			return mac, fmt.Errorf("invalid MAC address %q: bad octet %q", s, part)
		}
		mac[i] = strings.ToLower(part)
	}

	return mac, nil
}

// String returns the canonical lowercase colon-separated form
func (m MAC) String() string {
	return strings.Join(m[:], ":")
}

// OUI returns the organizationally unique identifier (first three octets)
func (m MAC) OUI() string {
	return strings.Join(m[:3], ":")
}

// LastNibble returns the final hex digit of the address
func (m MAC) LastNibble() byte {
	return m[5][1]
}

func isHex(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}
