package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// TrustedSubnetMiddleware rejects requests whose peer address lies outside
// cidr with 403. An empty cidr admits everyone.
func TrustedSubnetMiddleware(cidr string) (func(http.Handler) http.Handler, error) {
	cidr = strings.TrimSpace(cidr)
	if cidr == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	_, trusted, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("trusted subnet %q: %w", cidr, err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			ip := net.ParseIP(host)
			if ip == nil || !trusted.Contains(ip) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
