// Package multibase implements the self-describing key/signature encoding
// used throughout the Originals SDK: a two-byte multicodec header
// concatenated with key bytes, base58btc-encoded and prefixed with the
// multibase 'z' marker. It also exposes bare multibase encode/decode (no
// multicodec header) for signatures and other opaque payloads.
package multibase

import (
	"github.com/mr-tron/base58"
	gomultibase "github.com/multiformats/go-multibase"

	"go.originals.dev/sdk/internal/errors"
)

// Algorithm identifies the cryptographic curve a key belongs to.
type Algorithm string

const (
	// Ed25519 identifies Edwards25519 keys.
	Ed25519 Algorithm = "Ed25519"
	// Secp256k1 identifies secp256k1 keys.
	Secp256k1 Algorithm = "Secp256k1"
	// P256 identifies NIST P-256 keys.
	P256 Algorithm = "P256"
	// BLS12381G2 identifies BLS12-381 G2 keys.
	BLS12381G2 Algorithm = "BLS12381G2"
)

// KeyKind distinguishes public from private key material; the multicodec
// header differs between the two for a given algorithm.
type KeyKind int

const (
	// PublicKey marks the header for public key material.
	PublicKey KeyKind = iota
	// PrivateKey marks the header for private key material.
	PrivateKey
)

// header is a two-byte multicodec prefix.
type header [2]byte

var headers = map[Algorithm]map[KeyKind]header{
	Ed25519: {
		PublicKey:  {0xed, 0x01},
		PrivateKey: {0x80, 0x26},
	},
	Secp256k1: {
		PublicKey:  {0xe7, 0x01},
		PrivateKey: {0x13, 0x01},
	},
	P256: {
		PublicKey:  {0x12, 0x00},
		PrivateKey: {0x13, 0x06},
	},
	BLS12381G2: {
		PublicKey:  {0xeb, 0x01},
		PrivateKey: {0x13, 0x09},
	},
}

var headerIndex = func() map[header]struct {
	alg  Algorithm
	kind KeyKind
} {
	idx := make(map[header]struct {
		alg  Algorithm
		kind KeyKind
	})
	for alg, kinds := range headers {
		for kind, h := range kinds {
			idx[h] = struct {
				alg  Algorithm
				kind KeyKind
			}{alg, kind}
		}
	}
	return idx
}()

// Encode prepends the multicodec header for (alg, kind) to key and
// base58btc-encodes the result with the 'z' multibase prefix.
func Encode(alg Algorithm, kind KeyKind, key []byte) (string, error) {
	h, ok := headers[alg][kind]
	if !ok {
		return "", errors.EncodingErr("unsupported key type: %s", alg)
	}
	buf := make([]byte, 0, 2+len(key))
	buf = append(buf, h[0], h[1])
	buf = append(buf, key...)
	return "z" + base58.Encode(buf), nil
}

// Decode reverses Encode, returning the algorithm, key kind and raw key
// bytes embedded in a multibase string.
func Decode(s string) (Algorithm, KeyKind, []byte, error) {
	if len(s) == 0 || s[0] != 'z' {
		return "", 0, nil, errors.EncodingErr("invalid multibase encoding: missing 'z' prefix")
	}
	raw, err := base58.Decode(s[1:])
	if err != nil {
		return "", 0, nil, errors.EncodingErr("invalid base58 payload: %v", err)
	}
	if len(raw) < 2 {
		return "", 0, nil, errors.EncodingErr("invalid multibase payload: too short")
	}
	h := header{raw[0], raw[1]}
	entry, ok := headerIndex[h]
	if !ok {
		return "", 0, nil, errors.EncodingErr("unsupported key type header: 0x%x%x", h[0], h[1])
	}
	return entry.alg, entry.kind, raw[2:], nil
}

// EncodeBare base58btc-encodes data with the 'z' multibase prefix and no
// multicodec header, used for signatures and other opaque payloads.
func EncodeBare(data []byte) string {
	return "z" + base58.Encode(data)
}

// DecodeBare reverses EncodeBare and additionally accepts any multibase
// prefix supported by the go-multibase library (base16, base64, ...) for
// payloads produced outside the SDK's own hot path.
func DecodeBare(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, errors.EncodingErr("invalid multibase encoding: empty input")
	}
	if s[0] == 'z' {
		raw, err := base58.Decode(s[1:])
		if err != nil {
			return nil, errors.EncodingErr("invalid base58 payload: %v", err)
		}
		return raw, nil
	}
	_, raw, err := gomultibase.Decode(s)
	if err != nil {
		return nil, errors.EncodingErr("invalid multibase payload: %v", err)
	}
	return raw, nil
}
