package security_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"tailscale.com/ipn"

	"hookboard/internal/security"
)

func remoteAddrOf(t *testing.T, ctx context.Context) string {
	t.Helper()

	var got string
	h := security.FunnelRealIP(slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.RemoteAddr
		}),
	)

	req := httptest.NewRequest(http.MethodPost, "/webhook/receiver", nil).WithContext(ctx)
	req.RemoteAddr = "100.64.0.1:443"
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestFunnelRealIP(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{
			name: "no connection on context",
			ctx:  context.Background(),
			want: "100.64.0.1:443",
		},
		{
			name: "plain connection",
			ctx:  security.ConnContext(context.Background(), server),
			want: "100.64.0.1:443",
		},
		{
			name: "funnel connection",
			ctx: security.ConnContext(context.Background(), &ipn.FunnelConn{
				Conn: server,
				Src:  netip.MustParseAddrPort("203.0.113.7:51234"),
			}),
			want: "203.0.113.7:51234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, remoteAddrOf(t, tt.ctx))
		})
	}
}
