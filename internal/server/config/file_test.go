package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_parseFile_Formats(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	jsonPath := writeTempFile(t, "cfg.json", `{
		"endpoint_addr_http": "www.example:9000",
		"database_dsn": "sqlite://file:cms.db",
		"secret_key": "my_secret_key",
		"access_token_validity_duration": "15m",
		"store_timeout": 3000000000,
		"default_role": "editor",
		"argon2_memory_kib": 19456,
		"argon2_iterations": 2,
		"argon2_threads": 1
	}`)

	yamlPath := writeTempFile(t, "cfg.yml", `
endpoint_addr_http: "www.example:9000"
database_dsn: "sqlite://file:cms.db"
secret_key: my_secret_key
access_token_validity_duration: 15m
store_timeout: 3s
default_role: editor
argon2_memory_kib: 19456
argon2_iterations: 2
argon2_threads: 1
`)

	for _, path := range []string{jsonPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			os.Args = []string{"testbin", "-config", path}

			cfg := &Config{}
			cfg.LoadDefaults()
			require.NoError(t, parseFile(cfg))

			assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
			assert.Equal(t, "sqlite://file:cms.db", cfg.DatabaseDSN)
			assert.Equal(t, "my_secret_key", cfg.SecretKey)
			assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
			assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
			assert.Equal(t, "editor", cfg.DefaultRole)
			assert.Equal(t, uint32(19456), cfg.Argon2Memory)
			assert.Equal(t, uint32(2), cfg.Argon2Iterations)
			assert.Equal(t, uint8(1), cfg.Argon2Threads)
			// not in the file
			assert.Equal(t, "info", cfg.LogLevel)
			assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		})
	}
}

func Test_parseFile_NoFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := &Config{EndpointAddrHTTP: "defaults:1234"}
	require.NoError(t, parseFile(cfg))
	assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
}

func Test_parseFile_Errors(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		path string
	}{
		{"invalid json", writeTempFile(t, "bad.json", `{ this is not valid json`)},
		{"invalid yaml", writeTempFile(t, "bad.yaml", "store_timeout: [1, 2\n")},
		{"bad duration", writeTempFile(t, "dur.json", `{"store_timeout": "later"}`)},
		{"unknown extension", writeTempFile(t, "cfg.toml", `a = 1`)},
		{"missing file", filepath.Join(t.TempDir(), "absent.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = []string{"testbin", "-c", tt.path}
			require.Error(t, parseFile(&Config{}))
		})
	}
}
