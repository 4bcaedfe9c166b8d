// Package credential implements Verifiable Credential issuance and
// verification on top of the integrity engine's DataIntegrityProof
// machinery.
package credential

import (
	"context"
	"time"

	"go.originals.dev/sdk/integrity"
	"go.originals.dev/sdk/internal/errors"
)

// V2Context is the W3C Verifiable Credentials v2 context, always first in
// @context.
const V2Context = "https://www.w3.org/ns/credentials/v2"

// Credential is a W3C-shape Verifiable Credential.
type Credential struct {
	Context           []string               `json:"@context"`
	Type              []string               `json:"type"`
	Issuer            string                 `json:"issuer"`
	IssuanceDate      string                 `json:"issuanceDate"`
	CredentialSubject map[string]interface{} `json:"credentialSubject"`
	Proof             []integrity.Proof      `json:"proof,omitempty"`
}

// Presentation is a W3C-shape Verifiable Presentation wrapping one or more
// credentials.
type Presentation struct {
	Context              []string          `json:"@context"`
	Type                 []string          `json:"type"`
	VerifiableCredential []Credential      `json:"verifiableCredential"`
	Proof                []integrity.Proof `json:"proof,omitempty"`
}

// IssueOptions configures credential/presentation issuance.
type IssueOptions struct {
	ProofPurpose       string
	VerificationMethod string
	Challenge          string
	Domain             string
	Created            time.Time
}

// Issuer issues credentials and presentations, signing with a Signer bound
// to the verification method's secret key.
type Issuer struct {
	Engine *integrity.Engine
}

// NewIssuer constructs an Issuer over engine.
func NewIssuer(engine *integrity.Engine) *Issuer {
	return &Issuer{Engine: engine}
}

// Issue signs a credential whose subject and issuer DID are provided by the
// caller, attaching a single DataIntegrityProof.
func (i *Issuer) Issue(ctx context.Context, issuerDID string, subject map[string]interface{}, credType []string, signer integrity.Signer, privateKeyMultibase string, opts IssueOptions) (*Credential, error) {
	if opts.VerificationMethod == "" {
		return nil, errors.InputErr("verificationMethod is required to issue a credential")
	}
	vc := &Credential{
		Context:           []string{V2Context},
		Type:              append([]string{"VerifiableCredential"}, credType...),
		Issuer:            issuerDID,
		IssuanceDate:      timeOrNow(opts.Created).Format(time.RFC3339),
		CredentialSubject: subject,
	}
	proof, err := i.Engine.CreateProof(ctx, vc, signer, privateKeyMultibase, integrity.Options{
		VerificationMethod: opts.VerificationMethod,
		ProofPurpose:       orDefault(opts.ProofPurpose, "assertionMethod"),
		Created:            opts.Created,
	})
	if err != nil {
		return nil, err
	}
	vc.Proof = []integrity.Proof{*proof}
	return vc, nil
}

// Present wraps credentials in a signed presentation.
func (i *Issuer) Present(ctx context.Context, credentials []Credential, signer integrity.Signer, privateKeyMultibase string, opts IssueOptions) (*Presentation, error) {
	if opts.VerificationMethod == "" {
		return nil, errors.InputErr("verificationMethod is required to issue a presentation")
	}
	vp := &Presentation{
		Context:              []string{V2Context},
		Type:                 []string{"VerifiablePresentation"},
		VerifiableCredential: credentials,
	}
	proof, err := i.Engine.CreateProof(ctx, vp, signer, privateKeyMultibase, integrity.Options{
		VerificationMethod: opts.VerificationMethod,
		ProofPurpose:       orDefault(opts.ProofPurpose, "authentication"),
		Created:            opts.Created,
	})
	if err != nil {
		return nil, err
	}
	vp.Proof = []integrity.Proof{*proof}
	return vp, nil
}

// Verifier verifies credentials and presentations.
type Verifier struct {
	Engine *integrity.Engine
}

// NewVerifier constructs a Verifier over engine.
func NewVerifier(engine *integrity.Engine) *Verifier {
	return &Verifier{Engine: engine}
}

// VerificationReport is the result of verifying a credential or presentation.
type VerificationReport struct {
	Verified bool
	Errors   []string
}

// VerifyCredential rejects structurally invalid credentials before
// delegating proof verification to the integrity engine.
func (v *Verifier) VerifyCredential(ctx context.Context, vc *Credential, verifier integrity.Verifier) *VerificationReport {
	report := &VerificationReport{}
	if len(vc.Context) == 0 {
		report.Errors = append(report.Errors, "missing @context")
	}
	if len(vc.Type) == 0 {
		report.Errors = append(report.Errors, "missing type")
	}
	if len(vc.Proof) == 0 {
		report.Errors = append(report.Errors, "missing proof")
	}
	if len(report.Errors) > 0 {
		return report
	}

	stripped := *vc
	stripped.Proof = nil
	result := v.Engine.VerifyProof(ctx, stripped, &vc.Proof[0], verifier)
	report.Verified = result.Verified
	report.Errors = append(report.Errors, result.Errors...)
	return report
}

// VerifyPresentation verifies the presentation's own proof and every
// embedded credential.
func (v *Verifier) VerifyPresentation(ctx context.Context, vp *Presentation, verifier integrity.Verifier) *VerificationReport {
	report := &VerificationReport{}
	if len(vp.Context) == 0 {
		report.Errors = append(report.Errors, "missing @context")
	}
	if len(vp.Proof) == 0 {
		report.Errors = append(report.Errors, "missing proof")
	}
	if len(report.Errors) > 0 {
		return report
	}

	stripped := *vp
	stripped.Proof = nil
	result := v.Engine.VerifyProof(ctx, stripped, &vp.Proof[0], verifier)
	if !result.Verified {
		report.Errors = append(report.Errors, result.Errors...)
		return report
	}

	for _, vc := range vp.VerifiableCredential {
		sub := v.VerifyCredential(ctx, &vc, verifier)
		if !sub.Verified {
			report.Errors = append(report.Errors, sub.Errors...)
		}
	}
	report.Verified = len(report.Errors) == 0
	return report
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
