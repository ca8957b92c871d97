package appticket

import (
	"testing"

	"github.com/connesc/appticket/internal/testissuer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestParseEnvelope(t *testing.T) {
	ciphertext := []byte("0123456789abcdef0123456789abcdef")
	b := testissuer.Envelope(4, 0xDEADBEEF, 5, 70, ciphertext)

	env, err := parseEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, Header{Version: 4, CRC: 0xDEADBEEF, UserDataLen: 5, OwnershipLen: 70}, env.Header)
	assert.Equal(t, ciphertext, env.Ciphertext)
}

func TestParseEnvelopeSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("ignored"))
	b = protowire.AppendTag(b, 10, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 1)
	b = append(b, testissuer.Envelope(2, 1, 0, 40, []byte("ciphertext"))...)

	env, err := parseEnvelope(b)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), env.Version)
	assert.Equal(t, []byte("ciphertext"), env.Ciphertext)
}

func TestParseEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name    string
		build   func() []byte
		wantErr string
	}{
		{
			name:    "missing ciphertext",
			build:   func() []byte { return testissuer.Envelope(4, 1, 2, 3, nil) },
			wantErr: "envelope: missing ciphertext",
		},
		{
			name: "out of range field",
			build: func() []byte {
				b := protowire.AppendTag(nil, 1, protowire.VarintType)
				return protowire.AppendVarint(b, 1<<32)
			},
			wantErr: "envelope: field 1 out of range: 4294967296",
		},
		{
			name: "truncated bytes",
			build: func() []byte {
				b := testissuer.Envelope(4, 1, 2, 3, []byte("ciphertext"))
				return b[:len(b)-1]
			},
			wantErr: "envelope: failed to parse ciphertext",
		},
		{
			name:    "truncated tag",
			build:   func() []byte { return []byte{0x80} },
			wantErr: "envelope: failed to parse tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := parseEnvelope(tt.build())
			assert.Nil(t, env)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
