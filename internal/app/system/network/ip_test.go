package network

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name          string
		xForwardedFor string
		xRealIP       string
		remoteAddr    string
		trustProxy    bool
		want          string
	}{
		{
			name:          "forwarded single IP",
			xForwardedFor: "192.168.1.1",
			remoteAddr:    "10.0.0.1:12345",
			trustProxy:    true,
			want:          "192.168.1.1",
		},
		{
			name:          "forwarded chain takes first",
			xForwardedFor: "192.168.1.1, 10.0.0.2, 172.16.0.1",
			remoteAddr:    "10.0.0.1:12345",
			trustProxy:    true,
			want:          "192.168.1.1",
		},
		{
			name:       "real IP",
			xRealIP:    "192.168.1.7",
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			want:       "192.168.1.7",
		},
		{
			name:          "headers ignored without trusted proxy",
			xForwardedFor: "1.2.3.4",
			xRealIP:       "5.6.7.8",
			remoteAddr:    "10.0.0.1:12345",
			want:          "10.0.0.1",
		},
		{
			name:       "IPv6 remote addr",
			remoteAddr: "[::1]:8080",
			want:       "::1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "10.0.0.9",
			want:       "10.0.0.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwardedFor)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			if got := ClientIP(req, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
