package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig lists the CIDR ranges of proxies whose forwarding headers we trust.
type IPConfig struct {
	TrustedProxies []string
}

// ClientIP returns the client address used for audit logging. Forwarding
// headers are only honored when the direct peer is a trusted proxy, so a
// caller cannot spoof its address by setting X-Forwarded-For itself.
func ClientIP(r *http.Request, cfg *IPConfig) string {
	remoteIP := remoteAddr(r)

	if cfg != nil && isTrustedProxy(remoteIP, cfg.TrustedProxies) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, ip := range strings.Split(xff, ",") {
				ip = strings.TrimSpace(ip)
				if net.ParseIP(ip) != nil {
					return ip
				}
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" && net.ParseIP(xri) != nil {
			return xri
		}
	}

	return remoteIP
}

func remoteAddr(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}

func isTrustedProxy(ip string, trusted []string) bool {
	peer := net.ParseIP(ip)
	if peer == nil {
		return false
	}
	for _, cidr := range trusted {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(peer) {
			return true
		}
	}
	return false
}
