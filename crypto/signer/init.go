package signer

import "sync"

var initOnce sync.Once

// Init wires any process-wide hash/HMAC injection required by the curve
// primitives used by this suite. It is idempotent and safe to call from
// multiple goroutines; none of the libraries backing this suite (stdlib
// crypto/ecdsa, golang.org/x/crypto/ed25519, decred's secp256k1, and
// gnark-crypto's bls12-381) require runtime hash injection, so this is a
// deliberate no-op retained as the hook point the spec's design notes call
// for, should a future algorithm need it.
func Init() {
	initOnce.Do(func() {})
}
