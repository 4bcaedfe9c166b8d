// Package btco implements the did:btco layer: a DID anchored to a specific
// satoshi on a Bitcoin-like chain via an ordinal inscription carrying the
// DID document.
package btco

import (
	"strconv"
	"strings"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/internal/errors"
)

// Network selects which did:btco prefix and satoshi range apply.
type Network string

const (
	Mainnet Network = "mainnet"
	Regtest Network = "regtest"
	Signet  Network = "signet"
)

// MaxSupply is the maximum valid satoshi identifier: the true final supply
// of satoshis once the subsidy halving schedule fully tapers to zero, not
// the naive 21,000,000 BTC * 1e8 upper bound.
const MaxSupply = 2_099_999_997_690_000

// prefixFor returns the did:btco method prefix for the given network.
func prefixFor(network Network) string {
	switch network {
	case Regtest:
		return "did:btco:reg:"
	case Signet:
		return "did:btco:sig:"
	default:
		return "did:btco:"
	}
}

// DIDForSatoshi builds the did:btco identifier for satoshi on network,
// without constructing a document.
func DIDForSatoshi(satoshi uint64, network Network) (string, error) {
	if satoshi > MaxSupply {
		return "", errors.InputErr("satoshi %d exceeds maximum supply %d", satoshi, uint64(MaxSupply))
	}
	return prefixFor(network) + strconv.FormatUint(satoshi, 10), nil
}

// NetworkOf returns the network implied by a did:btco prefix.
func NetworkOf(id string) (Network, bool) {
	switch {
	case strings.HasPrefix(id, "did:btco:reg:"):
		return Regtest, true
	case strings.HasPrefix(id, "did:btco:sig:"):
		return Signet, true
	case strings.HasPrefix(id, "did:btco:"):
		return Mainnet, true
	default:
		return "", false
	}
}

// MigrateToDocument derives a btco-layer document bound to satoshi on
// network. The first verification method's key material is carried over
// when present; otherwise a minimal document with only @context and the
// prefixed DID is produced. Service endpoints are preserved.
func MigrateToDocument(doc *did.Document, satoshi uint64, network Network) (*did.Document, error) {
	if satoshi > MaxSupply {
		return nil, errors.InputErr("satoshi %d exceeds maximum supply %d", satoshi, uint64(MaxSupply))
	}
	id := prefixFor(network) + strconv.FormatUint(satoshi, 10)

	out := &did.Document{
		Context: []string{did.Context},
		ID:      id,
		Service: doc.Service,
	}

	if doc != nil && len(doc.VerificationMethod) > 0 {
		src := doc.VerificationMethod[0]
		fragment := "#key-1"
		if i := strings.Index(src.ID, "#"); i != -1 {
			fragment = src.ID[i:]
		}
		vmID := id + fragment
		out.VerificationMethod = []did.VerificationMethod{{
			ID:                 vmID,
			Type:               src.Type,
			Controller:         id,
			PublicKeyMultibase: src.PublicKeyMultibase,
		}}
		out.Authentication = []did.Relationship{{Reference: vmID}}
		out.AssertionMethod = []did.Relationship{{Reference: vmID}}
		out.CapabilityInvocation = []did.Relationship{{Reference: vmID}}
		out.CapabilityDelegation = []did.Relationship{{Reference: vmID}}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseSatoshi extracts the satoshi identifier from a did:btco DID string.
func ParseSatoshi(id string) (uint64, error) {
	m := didPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, errors.InputErr("not a did:btco identifier: %s", id)
	}
	n, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return 0, errors.InputErr("invalid satoshi in %s: %v", id, err)
	}
	return n, nil
}
