// Package webvh implements the did:webvh layer: a DID whose canonical
// document and history are published to an HTTPS origin as an append-only
// JSON-Lines log signed by rotating update keys.
package webvh

import (
	"context"
	"net"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/internal/errors"
)

// Prefix is the DID method prefix for the webvh layer.
const Prefix = "did:webvh:"

// Signer produces a signature over message using the secret behind
// privateKeyMultibase; satisfied by crypto/signer.Suite and by
// keystore.Store.Sign bound to a reference.
type Signer interface {
	Sign(ctx context.Context, message []byte, privateKeyMultibase string) ([]byte, error)
}

// Proof is a data-integrity proof envelope attached to a log entry, mirroring
// integrity.Proof's wire shape. Kept as a distinct type because log entries
// are signed directly against a known key reference rather than through the
// integrity engine's verification-method-resolution path.
type Proof struct {
	Type               string `json:"type"`
	Cryptosuite        string `json:"cryptosuite"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	ProofValue         string `json:"proofValue"`
}

// LogEntry is one line of a did.jsonl append-only log.
type LogEntry struct {
	VersionID   string                 `json:"versionId"`
	VersionTime time.Time              `json:"versionTime"`
	Parameters  map[string]interface{} `json:"parameters"`
	State       *did.Document          `json:"state"`
	Proof       []Proof                `json:"proof,omitempty"`
}

// Builder is the injected collaborator that performs DID construction and
// signing of log entries; the out-of-scope JSON-LD canonicalizer from the
// system overview. A default, JCS-based implementation is provided below.
type Builder interface {
	// PrepareDataForSigning returns the canonical bytes an entry's proof is
	// computed over.
	PrepareDataForSigning(ctx context.Context, entry *LogEntry) ([]byte, error)
	// CreateDID builds the genesis document and its first log entry.
	CreateDID(ctx context.Context, params CreateParams) (*did.Document, *LogEntry, error)
	// UpdateDID builds and signs a new entry from updates, keeping the latest
	// log state's document id.
	UpdateDID(ctx context.Context, log []LogEntry, updates *did.Document, signer Signer, keyRef string) (*LogEntry, error)
}

// CreateParams configures createDIDWebVH. Exactly one of the internal
// keypair path (PublicKeyMultibase + Signer bound to the matching private
// key reference) or the external signer path (ExternalSigner +
// VerificationMethods + UpdateKeys) is expected.
type CreateParams struct {
	Domain              string
	PublicKeyMultibase  string // internal keypair path
	Signer              Signer // signs the genesis entry in the internal keypair path
	ExternalSigner      Signer
	VerificationMethods []did.VerificationMethod
	UpdateKeys          []string
	Paths               []string
	Portable            bool
	OutputDir           string
}

var segmentPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// sanitizeSegment rejects path traversal and invalid characters in a single
// path segment.
func sanitizeSegment(seg string) error {
	if seg == "" || seg == "." || seg == ".." {
		return errors.InputErr("invalid path segment: %q", seg)
	}
	if strings.ContainsAny(seg, "/\\") || strings.ContainsRune(seg, 0) {
		return errors.InputErr("invalid path segment: %q", seg)
	}
	if filepath.IsAbs(seg) {
		return errors.InputErr("absolute path segment not allowed: %q", seg)
	}
	if !segmentPattern.MatchString(seg) {
		return errors.InputErr("path segment contains disallowed characters: %q", seg)
	}
	return nil
}

var hostPortPattern = regexp.MustCompile(`^[a-zA-Z0-9.-]+(?::\d{1,5})?$`)

// validateDomain accepts localhost, dotted hostnames with an optional port,
// and dotted-quad IPv4 literals, per the development-friendly policy.
func validateDomain(domain string) error {
	if domain == "" {
		return errors.InputErr("domain must not be empty")
	}
	host := domain
	port := ""
	if i := strings.LastIndex(domain, ":"); i != -1 {
		host, port = domain[:i], domain[i+1:]
	}
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p < 1 || p > 65535 {
			return errors.InputErr("invalid port in domain %q", domain)
		}
	}
	if host == "localhost" {
		return nil
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if !hostPortPattern.MatchString(domain) {
		return errors.InputErr("invalid domain: %q", domain)
	}
	return nil
}

// sanitizeDomain URL-decodes, lowercases, and replaces any character outside
// [a-z0-9._-] with an underscore, producing a filesystem-safe directory name.
func sanitizeDomain(domain string) string {
	decoded, err := url.QueryUnescape(domain)
	if err != nil {
		decoded = domain
	}
	decoded = strings.ToLower(decoded)
	var b strings.Builder
	for _, r := range decoded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// buildDIDString assembles the did:webvh identifier from a sanitized domain
// and path segments.
func buildDIDString(domain string, paths []string) string {
	id := Prefix + domain
	for _, p := range paths {
		id += ":" + p
	}
	return id
}

// LogPath returns the on-disk path a log would be written to under baseDir,
// and an error if the resolved path would escape baseDir.
func LogPath(baseDir, domain string, paths []string) (string, error) {
	safeDomain := sanitizeDomain(domain)
	segments := append([]string{baseDir, "did", safeDomain}, paths...)
	segments = append(segments, "did.jsonl")
	full := filepath.Join(segments...)
	rel, err := filepath.Rel(baseDir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", errors.InputErr("resolved log path escapes base directory")
	}
	return full, nil
}

// CreateDIDWebVH validates params, delegates document and log construction
// to builder, validates the result, and optionally persists the log via
// store when params.OutputDir is set.
func CreateDIDWebVH(ctx context.Context, builder Builder, store LogStore, params CreateParams) (*did.Document, []LogEntry, error) {
	if err := validateDomain(params.Domain); err != nil {
		return nil, nil, err
	}
	for _, p := range params.Paths {
		if err := sanitizeSegment(p); err != nil {
			return nil, nil, err
		}
	}
	if params.ExternalSigner != nil {
		if len(params.VerificationMethods) == 0 || len(params.UpdateKeys) == 0 {
			return nil, nil, errors.InputErr("externalSigner requires non-empty verificationMethods and updateKeys")
		}
	}

	doc, entry, err := builder.CreateDID(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, nil, err
	}
	log := []LogEntry{*entry}

	if params.OutputDir != "" {
		path, err := LogPath(params.OutputDir, params.Domain, params.Paths)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Save(ctx, path, log); err != nil {
			return nil, nil, err
		}
	}
	return doc, log, nil
}

// UpdateDIDWebVH sets updates' id to the latest entry's document id,
// delegates a new signed entry to builder, validates, and optionally
// persists. With DefaultBuilder the new state is updates itself: fields of
// the previous state that updates leaves empty are not carried over.
func UpdateDIDWebVH(ctx context.Context, builder Builder, store LogStore, log []LogEntry, updates *did.Document, signer Signer, keyRef string, outputDir, domain string, paths []string) ([]LogEntry, error) {
	if len(log) == 0 {
		return nil, errors.InputErr("cannot update an empty log")
	}
	updates.ID = log[len(log)-1].State.ID

	entry, err := builder.UpdateDID(ctx, log, updates, signer, keyRef)
	if err != nil {
		return nil, err
	}
	if err := entry.State.Validate(); err != nil {
		return nil, err
	}
	newLog := append(append([]LogEntry(nil), log...), *entry)

	if outputDir != "" {
		path, err := LogPath(outputDir, domain, paths)
		if err != nil {
			return nil, err
		}
		if err := store.Save(ctx, path, newLog); err != nil {
			return nil, err
		}
	}
	return newLog, nil
}

// LogStore persists and loads JSON-Lines logs. Implementations live in the
// storage package; this interface is kept narrow so webvh never imports a
// concrete adapter.
type LogStore interface {
	Save(ctx context.Context, path string, log []LogEntry) error
	Load(ctx context.Context, path string) ([]LogEntry, error)
}
