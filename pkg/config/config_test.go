package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublicAPIBase(t *testing.T) {
	cases := []struct {
		public, server, want string
	}{
		{"", "", "/api"},
		{"", "https://srv.cloudpub.ru/", "https://srv.cloudpub.ru/api"},
		{"https://x.cloudpub.ru/api", "", "https://x.cloudpub.ru/api"},
		{"https://x.cloudpub.ru/api/", "https://other", "https://x.cloudpub.ru/api"},
	}
	for _, tc := range cases {
		cfg := &Config{Tunnel: TunnelConfig{PublicAPI: tc.public, ServerURL: tc.server}}
		assert.Equal(t, tc.want, cfg.PublicAPIBase())
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("PEDANT_TEST_BOOL", "true")
	t.Setenv("PEDANT_TEST_INT", "nope")
	t.Setenv("PEDANT_TEST_DUR", "90s")

	assert.True(t, getEnvBool("PEDANT_TEST_BOOL", false))
	assert.Equal(t, 7, getEnvInt("PEDANT_TEST_INT", 7))
	assert.Equal(t, 90*time.Second, getEnvDuration("PEDANT_TEST_DUR", time.Minute))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
}
