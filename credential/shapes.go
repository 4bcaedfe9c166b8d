package credential

import (
	"context"
	"time"

	"go.originals.dev/sdk/integrity"
)

// ResourceCreatedSubject describes one resource bound into a newly created
// peer asset.
type ResourceCreatedSubject struct {
	AssetID     string
	ResourceID  string
	Type        string
	ContentType string
	ContentHash string
	Creator     string
	CreatedAt   time.Time
}

// IssueResourceCreated issues a ResourceCreated credential for a single
// resource. The issuer and signer are always the same DID for this
// credential shape, since it is only ever minted at peer-asset creation.
func (i *Issuer) IssueResourceCreated(ctx context.Context, sub ResourceCreatedSubject, signer integrity.Signer, privateKeyMultibase string, verificationMethod string) (*Credential, error) {
	subject := map[string]interface{}{
		"id":          sub.AssetID,
		"resourceId":  sub.ResourceID,
		"type":        sub.Type,
		"contentType": sub.ContentType,
		"contentHash": sub.ContentHash,
		"creator":     sub.Creator,
		"createdAt":   sub.CreatedAt.Format(time.RFC3339),
	}
	return i.Issue(ctx, sub.AssetID, subject, []string{"ResourceCreated"}, signer, privateKeyMultibase, IssueOptions{
		VerificationMethod: verificationMethod,
	})
}

// ResourceMigratedSubject describes a layer transition for an asset.
type ResourceMigratedSubject struct {
	AssetID    string
	FromLayer  string
	ToLayer    string
	MigratedAt time.Time
}

// IssueResourceMigrated issues a ResourceMigrated credential. issuerDID is
// the asset's original peer DID; privateKeyMultibase/verificationMethod identify
// the currently active publisher/inscriber key used to produce the proof —
// the issuer/signer split required by the migration credential shape.
func (i *Issuer) IssueResourceMigrated(ctx context.Context, issuerDID string, sub ResourceMigratedSubject, signer integrity.Signer, privateKeyMultibase string, verificationMethod string) (*Credential, error) {
	subject := map[string]interface{}{
		"id":         sub.AssetID,
		"fromLayer":  sub.FromLayer,
		"toLayer":    sub.ToLayer,
		"migratedAt": sub.MigratedAt.Format(time.RFC3339),
	}
	return i.Issue(ctx, issuerDID, subject, []string{"ResourceMigrated"}, signer, privateKeyMultibase, IssueOptions{
		VerificationMethod: verificationMethod,
	})
}
