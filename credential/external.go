package credential

import "context"

// ExternalSigner lets a caller supply proof material from a key custody
// system outside the SDK's own KeyStore (an HSM, a remote signer, a
// browser wallet). Sign receives the exact bytes the integrity engine
// would otherwise hand to a local Signer and returns a multibase-encoded
// proofValue.
type ExternalSigner interface {
	Sign(ctx context.Context, input []byte) (proofValue string, err error)
	VerificationMethodID(ctx context.Context) (string, error)
}
