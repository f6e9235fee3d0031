package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// trustedProxies is the set of peers allowed to report the client address
type trustedProxies []netip.Prefix

// parseTrustedProxies accepts CIDRs and bare addresses. Invalid entries are
// skipped.
func parseTrustedProxies(entries []string) trustedProxies {
	var out trustedProxies
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return out
}

func (t trustedProxies) contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range t {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIPMiddleware replaces RemoteAddr with the client address.
// X-Forwarded-For and X-Real-IP are only read when the direct peer is a
// trusted proxy; otherwise the peer address is kept as is.
func ClientIPMiddleware(proxies []string) func(http.Handler) http.Handler {
	trusted := parseTrustedProxies(proxies)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := resolveClientIP(r, trusted); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveClientIP walks X-Forwarded-For from the right and returns the first
// hop that is not a trusted proxy
func resolveClientIP(r *http.Request, trusted trustedProxies) string {
	peer := hostOf(r.RemoteAddr)
	if !trusted.contains(peer) {
		return peer
	}

	var hops []string
	for _, header := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(header, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if _, err := netip.ParseAddr(hops[i]); err != nil {
			break
		}
		if !trusted.contains(hops[i]) {
			return hops[i]
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if _, err := netip.ParseAddr(xri); err == nil {
			return xri
		}
	}
	return peer
}

// getClientIP is the client address as resolved by ClientIPMiddleware
func getClientIP(r *http.Request) string {
	return hostOf(r.RemoteAddr)
}

func hostOf(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
