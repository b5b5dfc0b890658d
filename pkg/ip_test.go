package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestFromAddr(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestReadUserIP(t *testing.T) {
	ip, err := ReadUserIP(requestFromAddr("1.2.3.4:5678"))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", ip)

	ip, err = ReadUserIP(requestFromAddr("127.0.0.1:5678"))
	require.NoError(t, err)
	assert.Equal(t, "localhost", ip)

	req := requestFromAddr("4.3.2.1:999")
	req.Header.Set("X-Real-Ip", "8.8.8.8")
	ip, err = ReadUserIP(req)
	require.NoError(t, err)
	assert.Equal(t, "8.8.8.8", ip)

	_, err = ReadUserIP(requestFromAddr("not-an-ip"))
	assert.Error(t, err)
}
