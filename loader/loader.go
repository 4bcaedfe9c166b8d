// Package loader implements a DID-aware document loader: did:* IRIs are
// resolved through a DIDManager, everything else is fetched over HTTP.
// Results are memoized per call tree so a single proof verification sees a
// consistent view of every referenced document.
package loader

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/internal/errors"
)

// Result is the outcome of loading a single IRI.
type Result struct {
	ContextURL string
	DocumentURL string
	Document    interface{}
}

// ResolveFunc resolves a did:* IRI to a document; bound to
// did.Manager.ResolveDID by the embedding application.
type ResolveFunc func(ctx context.Context, id string) (*did.Document, error)

// FetchFunc fetches a non-did IRI; defaults to an http.Client-backed
// implementation with a 10-second timeout and a did+json-preferring Accept
// header.
type FetchFunc func(ctx context.Context, iri string) (*http.Response, error)

type memoKey struct{}

// Loader dispatches IRI resolution between the DID manager and plain HTTP,
// memoizing results per call tree.
type Loader struct {
	Resolve ResolveFunc
	Fetch   FetchFunc
}

// New constructs a Loader. A nil fetch defaults to DefaultFetch.
func New(resolve ResolveFunc, fetch FetchFunc) *Loader {
	if fetch == nil {
		fetch = DefaultFetch
	}
	return &Loader{Resolve: resolve, Fetch: fetch}
}

// WithMemo returns a context carrying a fresh memoization map, scoping one
// proof verification's set of loaded documents.
func WithMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, memoKey{}, &sync.Map{})
}

func memoFrom(ctx context.Context) *sync.Map {
	if m, ok := ctx.Value(memoKey{}).(*sync.Map); ok {
		return m
	}
	return nil
}

// Load resolves iri to a Result, consulting the call tree's memo table
// first when one is present in ctx.
func (l *Loader) Load(ctx context.Context, iri string) (*Result, error) {
	memo := memoFrom(ctx)
	if memo != nil {
		if v, ok := memo.Load(iri); ok {
			return v.(*Result), nil
		}
	}

	var res *Result
	switch {
	case isDID(iri):
		if l.Resolve == nil {
			return nil, errors.NotFoundErr("loader has no DID resolver configured")
		}
		doc, err := l.Resolve(ctx, iri)
		if err != nil {
			return nil, errors.Wrap(err, "resolving did iri")
		}
		res = &Result{DocumentURL: iri, Document: doc}
	default:
		fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		resp, err := l.Fetch(fetchCtx, iri)
		if err != nil {
			return nil, errors.ExternalErr("fetching %s: %v", iri, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, errors.ExternalErr("reading %s: %v", iri, err)
		}
		if resp.StatusCode >= 400 {
			return nil, errors.ExternalErr("fetching %s: status %d", iri, resp.StatusCode)
		}
		var doc interface{}
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, errors.EncodingErr("decoding %s: %v", iri, err)
		}
		res = &Result{DocumentURL: iri, Document: doc}
	}

	if memo != nil {
		memo.Store(iri, res)
	}
	return res, nil
}

func isDID(iri string) bool {
	return len(iri) > 4 && iri[:4] == "did:"
}

// DefaultFetch issues a GET request preferring DID document representations.
func DefaultFetch(ctx context.Context, iri string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/did+json, application/json, */*")
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}
