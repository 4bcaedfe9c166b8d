package credential_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/credential"
	"go.originals.dev/sdk/crypto/signer"
	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/integrity"
	"go.originals.dev/sdk/keystore"
)

func newTestIssuerVerifier(t *testing.T) (*credential.Issuer, *credential.Verifier, string, string) {
	t.Helper()
	store := keystore.New()
	kp, err := store.Generate(multibase.Ed25519, "did:peer:0zKey#key-1")
	require.NoError(t, err)

	vm := &did.VerificationMethod{ID: "did:peer:0zKey#key-1", PublicKeyMultibase: kp.PublicKeyMultibase}
	resolve := func(_ context.Context, vmID string) (*did.VerificationMethod, error) {
		if vmID == vm.ID {
			return vm, nil
		}
		return nil, nil
	}
	engine := integrity.NewEngine(nil, resolve)
	return credential.NewIssuer(engine), credential.NewVerifier(engine), kp.PrivateKeyMultibase, vm.ID
}

func TestIssueAndVerifyResourceCreated(t *testing.T) {
	issuer, verifier, priv, vmID := newTestIssuerVerifier(t)
	suite := signer.NewSuite()

	vc, err := issuer.IssueResourceCreated(context.Background(), credential.ResourceCreatedSubject{
		AssetID:     "did:peer:0zKey",
		ResourceID:  "res-1",
		Type:        "data",
		ContentType: "application/json",
		ContentHash: "abc123",
		Creator:     "did:peer:0zKey",
		CreatedAt:   time.Now(),
	}, suite, priv, vmID)
	require.NoError(t, err)
	assert.Equal(t, "did:peer:0zKey", vc.Issuer)

	report := verifier.VerifyCredential(context.Background(), vc, suite)
	assert.True(t, report.Verified)
}

func TestIssueResourceMigratedIssuerSignerSplit(t *testing.T) {
	issuer, verifier, priv, vmID := newTestIssuerVerifier(t)
	suite := signer.NewSuite()

	vc, err := issuer.IssueResourceMigrated(context.Background(), "did:peer:0zKey", credential.ResourceMigratedSubject{
		AssetID:    "did:peer:0zKey",
		FromLayer:  "peer",
		ToLayer:    "webvh",
		MigratedAt: time.Now(),
	}, suite, priv, vmID)
	require.NoError(t, err)
	assert.Equal(t, "did:peer:0zKey", vc.Issuer)
	assert.Equal(t, vmID, vc.Proof[0].VerificationMethod)

	report := verifier.VerifyCredential(context.Background(), vc, suite)
	assert.True(t, report.Verified)
}

func TestVerifyCredentialRejectsMissingProof(t *testing.T) {
	_, verifier, _, _ := newTestIssuerVerifier(t)
	suite := signer.NewSuite()
	report := verifier.VerifyCredential(context.Background(), &credential.Credential{
		Context: []string{credential.V2Context},
		Type:    []string{"VerifiableCredential"},
	}, suite)
	assert.False(t, report.Verified)
	assert.NotEmpty(t, report.Errors)
}
