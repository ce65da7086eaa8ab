// Package security recovers the real client address of requests arriving
// through a Tailscale Funnel listener.
package security

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"

	"tailscale.com/ipn"
)

type contextKey string

const (
	connectionContextKey contextKey = "connection"
)

// ConnContext stores the accepted connection on the request context. Install
// it as http.Server.ConnContext in front of FunnelRealIP.
func ConnContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, connectionContextKey, c)
}

// FunnelRealIP sets http.Request.RemoteAddr to the client's address when the
// request came through Funnel, whose proxied connections otherwise all appear
// to come from the local node.
//
// See Tailscale snippet for reference:
// <https://github.com/tailscale/tailscale/blob/8d7033f/cmd/tsidp/tsidp.go#L1040-L1059>
func FunnelRealIP(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if src, ok := funnelSource(r.Context()); ok {
				logger.Debug("changing request RemoteAddr", "from", r.RemoteAddr, "to", src)
				r.RemoteAddr = src
			} else {
				logger.Debug("request did not arrive over funnel", "RemoteAddr", r.RemoteAddr)
			}
			h.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func funnelSource(ctx context.Context) (string, bool) {
	netConn, ok := ctx.Value(connectionContextKey).(net.Conn)
	if !ok {
		return "", false
	}
	if tlsConn, ok := netConn.(*tls.Conn); ok {
		netConn = tlsConn.NetConn()
	}
	fc, ok := netConn.(*ipn.FunnelConn)
	if !ok {
		return "", false
	}
	return fc.Src.String(), true
}
