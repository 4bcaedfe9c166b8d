package btco

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/internal/errors"
)

// didPattern matches a did:btco identifier with an optional reg/sig network
// tag, the satoshi number, and an optional trailing path.
var didPattern = regexp.MustCompile(`^did:btco(?::(reg|sig))?:([0-9]+)(?:/(.+))?$`)

// InscriptionProvider is the narrow collaborator contract this resolver
// needs from an ordinals indexer/RPC client; concrete adapters live in the
// ordinals package.
type InscriptionProvider interface {
	InscriptionIDs(ctx context.Context, satoshi uint64) ([]string, error)
	FetchMetadata(ctx context.Context, inscriptionID string) ([]byte, error)
	FetchContent(ctx context.Context, inscriptionID string) ([]byte, error)
}

// InscriptionDetail records per-inscription resolution detail, returned
// alongside the resolved document for auditing.
type InscriptionDetail struct {
	InscriptionID string
	Content       string
	Document      *did.Document
	Deactivated   bool
	Error         error
}

// ResolutionMetadata accompanies a successful or failed resolution.
type ResolutionMetadata struct {
	InscriptionID    string
	Satoshi          uint64
	Network          Network
	TotalInscriptions int
	Error            string
}

// Resolution is the full result of resolving a did:btco identifier.
type Resolution struct {
	Document            *did.Document
	Inscriptions        []InscriptionDetail
	ResolutionMetadata  ResolutionMetadata
	DocumentMetadata    map[string]interface{}
}

var acceptedMediaTypes = map[string]bool{
	"application/did+json": true,
	"application/json":     true,
	"*/*":                  true,
	"":                     true,
}

// Resolver implements the BtcoDidResolver algorithm.
type Resolver struct {
	Provider InscriptionProvider
}

// NewResolver constructs a Resolver bound to provider.
func NewResolver(provider InscriptionProvider) *Resolver {
	return &Resolver{Provider: provider}
}

// Resolve resolves id to its latest-valid embedded DID document.
func (r *Resolver) Resolve(ctx context.Context, id string, accept string) (*Resolution, error) {
	if !acceptedMediaTypes[accept] {
		return nil, errors.RepresentationErr("unsupported accept media type: %s", accept)
	}
	m := didPattern.FindStringSubmatch(id)
	if m == nil {
		return nil, errors.InputErr("not a did:btco identifier: %s", id)
	}
	if m[3] != "" {
		return nil, errors.RepresentationErr("trailing path dereferencing is not supported: %s", id)
	}
	network := Mainnet
	switch m[1] {
	case "reg":
		network = Regtest
	case "sig":
		network = Signet
	}
	satoshi, err := ParseSatoshi(id)
	if err != nil {
		return nil, err
	}

	ids, err := r.Provider.InscriptionIDs(ctx, satoshi)
	if err != nil {
		return nil, errors.ExternalErr("fetching inscription ids: %v", err)
	}
	if len(ids) == 0 {
		return nil, errors.NotFoundErr("no inscriptions found for satoshi %d", satoshi)
	}

	expected := strings.ToLower(id)
	contentPattern := regexp.MustCompile(`(?i)^(?:btco did: )?` + regexp.QuoteMeta(expected) + `$`)

	details := make([]InscriptionDetail, 0, len(ids))
	for _, insID := range ids {
		fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		content, cErr := r.Provider.FetchContent(fetchCtx, insID)
		cancel()

		detail := InscriptionDetail{InscriptionID: insID}
		if cErr != nil {
			detail.Error = errors.ExternalErr("fetching inscription content: %v", cErr)
			details = append(details, detail)
			continue
		}
		detail.Content = string(content)

		if contentPattern.MatchString(strings.TrimSpace(strings.ToLower(detail.Content))) {
			metaCtx, metaCancel := context.WithTimeout(ctx, 10*time.Second)
			raw, mErr := r.Provider.FetchMetadata(metaCtx, insID)
			metaCancel()
			if mErr == nil {
				var doc did.Document
				if err := cbor.Unmarshal(raw, &doc); err == nil {
					if doc.ID == id && len(doc.Context) > 0 {
						detail.Document = &doc
					}
				} else {
					// metadata may be plain JSON rather than CBOR in some
					// indexers; fall back before giving up on this inscription.
					var jdoc did.Document
					if jErr := json.Unmarshal(raw, &jdoc); jErr == nil && jdoc.ID == id && len(jdoc.Context) > 0 {
						detail.Document = &jdoc
					}
				}
			}
		}

		if strings.Contains(detail.Content, "🔥") {
			detail.Deactivated = true
			detail.Document = nil
			detail.Error = errors.IntegrityErr("inscription %s deactivates %s", insID, id)
		}
		details = append(details, detail)
	}

	var winner *InscriptionDetail
	for i := len(details) - 1; i >= 0; i-- {
		if details[i].Document != nil && details[i].Error == nil {
			winner = &details[i]
			break
		}
	}

	res := &Resolution{
		Inscriptions: details,
		ResolutionMetadata: ResolutionMetadata{
			Satoshi:            satoshi,
			Network:            network,
			TotalInscriptions:  len(details),
		},
		DocumentMetadata: map[string]interface{}{},
	}
	if winner == nil {
		res.ResolutionMetadata.Error = "no valid inscription found"
		return res, nil
	}
	res.Document = winner.Document
	res.ResolutionMetadata.InscriptionID = winner.InscriptionID
	return res, nil
}
