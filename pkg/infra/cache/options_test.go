package cache

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Options(t *testing.T) {
	plain := Config{Host: "redis", Port: 6379, DB: 2}.options()
	assert.Equal(t, "redis:6379", plain.Addr)
	assert.Equal(t, 2, plain.DB)
	assert.Nil(t, plain.TLSConfig)

	verified := Config{Host: "redis.internal", Port: 6380, TLS: true}.options()
	require.NotNil(t, verified.TLSConfig)
	assert.False(t, verified.TLSConfig.InsecureSkipVerify)
	assert.Equal(t, "redis.internal", verified.TLSConfig.ServerName)
	assert.Equal(t, uint16(tls.VersionTLS12), verified.TLSConfig.MinVersion)

	insecure := Config{Host: "localhost", Port: 6380, TLS: true, TLSInsecure: true}.options()
	require.NotNil(t, insecure.TLSConfig)
	assert.True(t, insecure.TLSConfig.InsecureSkipVerify)
}
