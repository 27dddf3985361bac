package fetch

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/pkg/utils"
)

func TestCheckIP_BlockedRanges(t *testing.T) {
	tests := []struct {
		name    string
		ip      string
		blocked bool
	}{
		{"loopback v4", "127.0.0.1", true},
		{"loopback v6", "::1", true},
		{"private 10", "10.0.0.5", true},
		{"private 172", "172.16.8.1", true},
		{"private 192", "192.168.1.1", true},
		{"link-local metadata", "169.254.169.254", true},
		{"unspecified", "0.0.0.0", true},
		{"multicast", "224.0.0.1", true},
		{"public", "93.184.216.34", false},
		{"public v6", "2606:2800:220:1:248:1893:25c8:1946", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			require.NotNil(t, ip)

			err := CheckIP(ip)
			if tt.blocked {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckURL(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		blocked bool
	}{
		{"plain https", "https://jobs.example.com/posting/123", false},
		{"plain http", "http://example.com/job", false},
		{"file scheme", "file:///etc/passwd", true},
		{"gopher scheme", "gopher://example.com", true},
		{"localhost", "http://localhost/admin", true},
		{"localhost subdomain", "http://internal.localhost/", true},
		{"literal loopback", "http://127.0.0.1/", true},
		{"literal private", "https://10.1.2.3/", true},
		{"odd port", "https://example.com:8081/", true},
		{"explicit 443", "https://example.com:443/", false},
		{"no host", "https:///path", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			require.NoError(t, err)

			err = checkURL(u)
			if tt.blocked {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckURL_BlockedErrorCarriesStatus(t *testing.T) {
	u, err := url.Parse("http://127.0.0.1/")
	require.NoError(t, err)

	blockErr := checkURL(u)
	require.Error(t, blockErr)

	var ce *utils.CustomError
	require.True(t, errors.As(blockErr, &ce))
	assert.Equal(t, http.StatusUnprocessableEntity, ce.Code)
}

func TestGuardAddress(t *testing.T) {
	assert.Error(t, guardAddress("tcp4", "127.0.0.1:80", nil),
		"resolved loopback must be blocked at dial time")
	assert.Error(t, guardAddress("tcp4", "192.168.0.10:443", nil))
	assert.NoError(t, guardAddress("tcp4", "93.184.216.34:443", nil))
}

func TestIsTextContentType(t *testing.T) {
	assert.True(t, isTextContentType("text/html; charset=utf-8"))
	assert.True(t, isTextContentType("text/plain"))
	assert.False(t, isTextContentType("application/pdf"))
	assert.False(t, isTextContentType("image/png"))
}
