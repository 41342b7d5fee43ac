package entity

import (
	"fmt"
	"math"
	"net"
	"net/netip"
	"net/url"
	"strings"
)

// maxURLLength bounds source and article URLs.
const maxURLLength = 2048

// ValidateURL checks that rawURL is an absolute http(s) URL whose host does not
// resolve to a loopback, link-local, private or unspecified address. A host
// that cannot be resolved is accepted; fetching it fails later.
func ValidateURL(rawURL string) error {
	switch {
	case rawURL == "":
		return urlError("URL is required")
	case len(rawURL) > maxURLLength:
		return urlError(fmt.Sprintf("url must not exceed %d characters", maxURLLength))
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return urlError("URL is malformed")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return urlError("URL must use http or https scheme")
	}
	host := u.Hostname()
	if host == "" {
		return urlError("URL must have a valid host")
	}
	if pointsToPrivateNetwork(host) {
		return urlError("url cannot point to private network")
	}
	return nil
}

func urlError(msg string) error {
	return &ValidationError{Field: "url", Message: msg}
}

func pointsToPrivateNetwork(host string) bool {
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return true
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return isPrivateAddr(addr)
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return false
	}
	for _, ip := range ips {
		if addr, ok := netip.AddrFromSlice(ip); ok && isPrivateAddr(addr) {
			return true
		}
	}
	return false
}

// isPrivateAddr covers 127/8, ::1, 10/8, 172.16/12, 192.168/16, fc00::/7,
// 169.254/16 (cloud metadata included), fe80::/10 and the unspecified
// addresses. IPv4-mapped IPv6 addresses are checked as IPv4.
func isPrivateAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified()
}

// ValidateRatio checks that a summary compression ratio lies in (0, 1].
func ValidateRatio(ratio float64) error {
	if math.IsNaN(ratio) || ratio <= 0 || ratio > 1 {
		return &ValidationError{
			Field:   "ratio",
			Message: fmt.Sprintf("ratio must be greater than 0 and at most 1, got %v", ratio),
		}
	}
	return nil
}
