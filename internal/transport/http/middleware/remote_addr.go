package middleware

import (
	"net"
	"net/http"
	"strings"
)

// RemoteHost is the host part of the transport peer address.
// Forwarding headers are never consulted; a client can set them freely.
func RemoteHost(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" {
		return host
	}
	return addr
}
