package multibase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/encoding/multibase"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		alg  multibase.Algorithm
		kind multibase.KeyKind
		key  []byte
	}{
		{multibase.Ed25519, multibase.PublicKey, []byte("0123456789abcdef0123456789abcdef")},
		{multibase.Secp256k1, multibase.PrivateKey, []byte{1, 2, 3, 4, 5}},
		{multibase.P256, multibase.PublicKey, []byte{9, 9, 9}},
		{multibase.BLS12381G2, multibase.PrivateKey, []byte{7, 7, 7, 7}},
	}
	for _, c := range cases {
		enc, err := multibase.Encode(c.alg, c.kind, c.key)
		require.NoError(t, err)
		require.True(t, enc[0] == 'z')
		alg, kind, key, err := multibase.Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, c.alg, alg)
		assert.Equal(t, c.kind, kind)
		assert.Equal(t, c.key, key)
	}
}

func TestDecodeInvalidEncoding(t *testing.T) {
	_, _, _, err := multibase.Decode("nonsense")
	require.Error(t, err)
}

func TestDecodeUnsupportedKeyType(t *testing.T) {
	enc := multibase.EncodeBare([]byte{0xff, 0xff, 1, 2, 3})
	_, _, _, err := multibase.Decode(enc)
	require.Error(t, err)
}

func TestDecodeInvalidBase58(t *testing.T) {
	_, _, _, err := multibase.Decode("z0OIl")
	require.Error(t, err)
}

func TestBareRoundTrip(t *testing.T) {
	data := []byte("signature-bytes-here")
	enc := multibase.EncodeBare(data)
	dec, err := multibase.DecodeBare(enc)
	require.NoError(t, err)
	assert.Equal(t, data, dec)
}
