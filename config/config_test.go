package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

var envVars = []string{
	"APPTICKET_KEY", "APPTICKET_KEY_LENGTH", "APPTICKET_MAX_TICKET_SIZE", "APPTICKET_VERIFY_MAC",
	"APPTICKET_PUBLIC_KEY_FILE", "APPTICKET_REQUIRE_SIGNATURE", "APPTICKET_APP_ID",
	"APPTICKET_LOG_LEVEL", "APPTICKET_LOG_FORMAT",
}

// clearEnv unsets every variable read by Load for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Key)
				assert.Equal(t, 32, cfg.KeyLength)
				assert.Equal(t, 65536, cfg.MaxTicketSize)
				assert.True(t, cfg.VerifyMAC)
				assert.False(t, cfg.RequireSignature)
				assert.Equal(t, uint32(0), cfg.AppID)
				assert.Equal(t, "info", cfg.Log.Level)
				assert.Equal(t, "text", cfg.Log.Format)
			},
		},
		{
			name: "environment",
			env: map[string]string{
				"APPTICKET_KEY":               testKey,
				"APPTICKET_APP_ID":            "480",
				"APPTICKET_VERIFY_MAC":        "false",
				"APPTICKET_REQUIRE_SIGNATURE": "true",
				"APPTICKET_LOG_LEVEL":         "debug",
				"APPTICKET_LOG_FORMAT":        "json",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, testKey, cfg.Key)
				assert.Equal(t, uint32(480), cfg.AppID)
				assert.False(t, cfg.VerifyMAC)
				assert.True(t, cfg.RequireSignature)
				assert.Equal(t, "debug", cfg.Log.Level)
				assert.Equal(t, "json", cfg.Log.Format)
			},
		},
		{
			name: "file overrides environment",
			env: map[string]string{
				"APPTICKET_APP_ID":    "480",
				"APPTICKET_LOG_LEVEL": "debug",
			},
			file: "app_id: 570\nkey_length: 16\nkey: 000102030405060708090a0b0c0d0e0f\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, uint32(570), cfg.AppID)
				assert.Equal(t, 16, cfg.KeyLength)
				assert.Equal(t, "debug", cfg.Log.Level)
				assert.Equal(t, 65536, cfg.MaxTicketSize)
			},
		},
		{
			name:    "invalid key length",
			env:     map[string]string{"APPTICKET_KEY_LENGTH": "20"},
			wantErr: "KeyLength",
		},
		{
			name:    "key not matching key length",
			env:     map[string]string{"APPTICKET_KEY": "0011"},
			wantErr: "key is 2 bytes, expected 32",
		},
		{
			name:    "key not hexadecimal",
			env:     map[string]string{"APPTICKET_KEY": "not-a-key"},
			wantErr: "Key",
		},
		{
			name:    "invalid log level",
			file:    "log:\n  level: verbose\n",
			wantErr: "Level",
		},
		{
			name:    "missing public key file",
			env:     map[string]string{"APPTICKET_PUBLIC_KEY_FILE": "/nonexistent/steam.pem"},
			wantErr: "PublicKeyFile",
		},
		{
			name:    "malformed environment",
			env:     map[string]string{"APPTICKET_APP_ID": "-1"},
			wantErr: "failed to load from env",
		},
		{
			name:    "malformed file",
			file:    "app_id: [\n",
			wantErr: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for name, value := range tt.env {
				t.Setenv(name, value)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, "appticket.yaml", tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestDecodedKey(t *testing.T) {
	cfg := &Config{Key: "0x" + strings.ToUpper(testKey)}
	key, err := cfg.DecodedKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Equal(t, byte(0x1f), key[31])
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		cfg := &Config{Log: LogConfig{Level: level}}
		assert.Equal(t, want, cfg.SlogLevel(), level)
	}
}

func TestVerifierConfig(t *testing.T) {
	clearEnv(t)

	privateKey, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)
	keyFile := writeFile(t, "public.pem", string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})))

	t.Setenv("APPTICKET_KEY", testKey)
	t.Setenv("APPTICKET_PUBLIC_KEY_FILE", keyFile)
	t.Setenv("APPTICKET_REQUIRE_SIGNATURE", "true")
	t.Setenv("APPTICKET_VERIFY_MAC", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	vc, err := cfg.VerifierConfig(nil)
	require.NoError(t, err)
	assert.Len(t, vc.Key, 32)
	assert.True(t, vc.RequireSignature)
	assert.True(t, vc.SkipMAC)
	assert.Equal(t, 32, vc.KeyLength)
	assert.Equal(t, 65536, vc.MaxTicketSize)
	require.NotNil(t, vc.PublicKey)
	assert.Equal(t, 0, vc.PublicKey.N.Cmp(privateKey.N))
}

func TestVerifierConfigWithoutKey(t *testing.T) {
	cfg := &Config{KeyLength: 32}
	_, err := cfg.VerifierConfig(nil)
	assert.EqualError(t, err, "config: no key configured")
}
