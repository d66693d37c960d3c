package middlewares

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const unknownIP = "unknown"

// ClientIPMiddleware resolves the caller's origin ip once per request and stores it in the context.
//
// With trustForwardedFor the first X-Forwarded-For entry wins. The header is not validated
// against a proxy chain, so this is only correct behind a single trusted reverse proxy.
func ClientIPMiddleware(trustForwardedFor bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ResolveClientIP(r, trustForwardedFor)
			ctx := context.WithValue(r.Context(), clientIPKey, ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveClientIP returns the origin ip of r
func ResolveClientIP(r *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip, ok := parseIP(strings.TrimSpace(first)); ok {
				return ip
			}
		}
	}

	if r.RemoteAddr == "" {
		return unknownIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip, ok := parseIP(host); ok {
		return ip
	}
	return unknownIP
}

// parseIP accepts a bare address or address:port and returns it in canonical form
func parseIP(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		ap, perr := netip.ParseAddrPort(s)
		if perr != nil {
			return "", false
		}
		addr = ap.Addr()
	}
	return addr.WithZone("").Unmap().String(), true
}

// GetClientIP retrieves the resolved client ip from context
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return unknownIP
}
