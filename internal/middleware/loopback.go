package middleware

import (
	"net"
	"net/http"
)

// LoopbackOnly rejects requests that do not come from the local machine.
//
// The OAuth receiver binds to a loopback address already; this guards
// against it being configured on a wider interface by mistake, since the
// callback hands out session tokens.
func LoopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsLoopback(r.RemoteAddr) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsLoopback reports whether a host or host:port refers to a loopback
// address. Unparseable input is not loopback.
func IsLoopback(addr string) bool {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
