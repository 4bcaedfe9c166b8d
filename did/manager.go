package did

import (
	"context"
	"strings"

	"go.originals.dev/sdk/internal/errors"
	"go.originals.dev/sdk/internal/log"
)

// Resolver resolves a single layer's DID strings to documents.
type Resolver interface {
	Resolve(ctx context.Context, id string) (*Document, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ctx context.Context, id string) (*Document, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, id string) (*Document, error) {
	return f(ctx, id)
}

// Manager dispatches DID resolution across the peer, webvh and btco layers
// based on the identifier's method prefix.
type Manager struct {
	peer  Resolver
	webvh Resolver
	btco  Resolver
	log   log.Logger
}

// NewManager constructs a Manager over the three layer resolvers. Any of
// them may be nil if that layer is not needed by the embedding application.
func NewManager(peer, webvh, btco Resolver, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{peer: peer, webvh: webvh, btco: btco, log: logger}
}

// ResolveDID dispatches on the identifier's prefix. Failures never panic:
// any resolver error is returned alongside a nil document, and an unknown
// prefix yields a minimal skeleton document rather than an error.
func (m *Manager) ResolveDID(ctx context.Context, id string) (*Document, error) {
	switch {
	case strings.HasPrefix(id, "did:peer:"):
		if m.peer == nil {
			return nil, errors.NotFoundErr("no peer resolver configured")
		}
		doc, err := m.peer.Resolve(ctx, id)
		if err != nil {
			m.log.WithFields(log.Fields{"did": id, "error": err.Error()}).Warning("peer resolution failed")
			return nil, err
		}
		return doc, nil
	case strings.HasPrefix(id, "did:webvh:"):
		if m.webvh == nil {
			return nil, errors.NotFoundErr("no webvh resolver configured")
		}
		doc, err := m.webvh.Resolve(ctx, id)
		if err != nil {
			m.log.WithFields(log.Fields{"did": id, "error": err.Error()}).Warning("webvh resolution failed")
			return nil, err
		}
		return doc, nil
	case strings.HasPrefix(id, "did:btco:"):
		if m.btco == nil {
			return nil, errors.NotFoundErr("no btco resolver configured")
		}
		doc, err := m.btco.Resolve(ctx, id)
		if err != nil {
			m.log.WithFields(log.Fields{"did": id, "error": err.Error()}).Warning("btco resolution failed")
			return nil, err
		}
		return doc, nil
	default:
		return &Document{Context: []string{Context}, ID: id}, nil
	}
}
