// Package resource implements the content-addressed ResourceManager:
// immutable resource versions chained by content hash, with validation and
// MIME-type inference.
package resource

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.originals.dev/sdk/internal/errors"
)

// DefaultMaxSize is the default maximum accepted content size, in bytes.
const DefaultMaxSize = 10 * 1024 * 1024

var mimePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9!#$&.+^_-]*/[a-zA-Z0-9][a-zA-Z0-9!#$&.+^_-]*$`)
var hexHashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Resource is an immutable, content-addressed blob with metadata.
type Resource struct {
	ID                  string            `json:"id"`
	Type                string            `json:"type"`
	ContentType         string            `json:"contentType"`
	Hash                string            `json:"hash"`
	Size                int64             `json:"size"`
	Version             int               `json:"version"`
	PreviousVersionHash string            `json:"previousVersionHash,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	URL                 string            `json:"url,omitempty"`
	Description         string            `json:"description,omitempty"`
	Content             []byte            `json:"-"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// CreateOptions configures CreateResource.
type CreateOptions struct {
	ID          string
	ContentType string
	Type        string
	URL         string
	Description string
	Metadata    map[string]string
}

var typeByMIME = map[string]string{
	"application/json":       "data",
	"application/yaml":       "data",
	"application/x-yaml":     "data",
	"application/octet-stream": "binary",
	"application/pdf":        "document",
}

var typeByPrefix = []struct {
	prefix string
	tag    string
}{
	{"image/", "image"},
	{"text/", "text"},
	{"audio/", "audio"},
	{"video/", "video"},
	{"application/", "data"},
}

// InferResourceType maps a MIME type to a categorical tag, falling back to
// prefix matching and finally "other".
func InferResourceType(mime string) string {
	if tag, ok := typeByMIME[mime]; ok {
		return tag
	}
	for _, p := range typeByPrefix {
		if strings.HasPrefix(mime, p.prefix) {
			return p.tag
		}
	}
	return "other"
}

// Manager owns version chains for a set of resource ids.
type Manager struct {
	mu      sync.RWMutex
	chains  map[string][]*Resource
	maxSize int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxSize overrides the default max content size.
func WithMaxSize(n int64) Option {
	return func(m *Manager) { m.maxSize = n }
}

// New constructs an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{chains: make(map[string][]*Resource), maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func validateMIME(contentType string) error {
	if !mimePattern.MatchString(contentType) {
		return errors.InputErr("invalid content type: %q", contentType)
	}
	return nil
}

// CreateResource stores content as version 1 of a new resource.
func (m *Manager) CreateResource(content []byte, opts CreateOptions) (*Resource, error) {
	if content == nil {
		return nil, errors.InputErr("content must not be nil")
	}
	if opts.ContentType == "" {
		return nil, errors.InputErr("contentType is required")
	}
	if err := validateMIME(opts.ContentType); err != nil {
		return nil, err
	}
	if int64(len(content)) > m.maxSize {
		return nil, errors.InputErr("content size %d exceeds max %d", len(content), m.maxSize)
	}

	id := opts.ID
	if id == "" {
		id = newResourceID()
	}
	tag := opts.Type
	if tag == "" {
		tag = InferResourceType(opts.ContentType)
	}
	h := hashBytes(content)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.chains[id]; exists {
		return nil, errors.InputErr("resource %q already exists", id)
	}

	r := &Resource{
		ID:          id,
		Type:        tag,
		ContentType: opts.ContentType,
		Hash:        h,
		Size:        int64(len(content)),
		Version:     1,
		CreatedAt:   time.Now().UTC(),
		URL:         opts.URL,
		Description: opts.Description,
		Content:     content,
		Metadata:    opts.Metadata,
	}
	m.chains[id] = []*Resource{r}
	return cloneResource(r), nil
}

// UpdateResource appends a new version to an existing chain.
func (m *Manager) UpdateResource(id string, content []byte, opts CreateOptions) (*Resource, error) {
	if content == nil {
		return nil, errors.InputErr("content must not be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	chain, ok := m.chains[id]
	if !ok || len(chain) == 0 {
		return nil, errors.NotFoundErr("no resource chain for id %q", id)
	}
	head := chain[len(chain)-1]
	h := hashBytes(content)
	if h == head.Hash {
		return nil, errors.InputErr("update content is unchanged from current version")
	}
	if int64(len(content)) > m.maxSize {
		return nil, errors.InputErr("content size %d exceeds max %d", len(content), m.maxSize)
	}

	contentType := head.ContentType
	if opts.ContentType != "" {
		if err := validateMIME(opts.ContentType); err != nil {
			return nil, err
		}
		contentType = opts.ContentType
	}
	tag := head.Type
	if opts.Type != "" {
		tag = opts.Type
	}
	url := head.URL
	if opts.URL != "" {
		url = opts.URL
	}
	desc := head.Description
	if opts.Description != "" {
		desc = opts.Description
	}

	r := &Resource{
		ID:                  id,
		Type:                tag,
		ContentType:         contentType,
		Hash:                h,
		Size:                int64(len(content)),
		Version:             head.Version + 1,
		PreviousVersionHash: head.Hash,
		CreatedAt:           time.Now().UTC(),
		URL:                 url,
		Description:         desc,
		Content:             content,
		Metadata:            opts.Metadata,
	}
	m.chains[id] = append(chain, r)
	return cloneResource(r), nil
}

// GetResourceVersion returns a specific 1-indexed version.
func (m *Manager) GetResourceVersion(id string, version int) (*Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain, ok := m.chains[id]
	if !ok || version < 1 || version > len(chain) {
		return nil, errors.NotFoundErr("no version %d for resource %q", version, id)
	}
	return cloneResource(chain[version-1]), nil
}

// GetCurrentVersion returns the latest version of a resource.
func (m *Manager) GetCurrentVersion(id string) (*Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain, ok := m.chains[id]
	if !ok || len(chain) == 0 {
		return nil, errors.NotFoundErr("no resource chain for id %q", id)
	}
	return cloneResource(chain[len(chain)-1]), nil
}

// GetResourceByHash searches every chain for a version with the given hash.
func (m *Manager) GetResourceByHash(hash string) (*Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, chain := range m.chains {
		for _, r := range chain {
			if r.Hash == hash {
				return cloneResource(r), nil
			}
		}
	}
	return nil, errors.NotFoundErr("no resource with hash %q", hash)
}

// GetResourceHistory returns every resource id currently tracked.
func (m *Manager) GetResourceHistory() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.chains))
	for id := range m.chains {
		ids = append(ids, id)
	}
	return ids
}

// GetResourceVersionHistory returns a copy of every version of a resource.
func (m *Manager) GetResourceVersionHistory(id string) ([]*Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain, ok := m.chains[id]
	if !ok {
		return nil, errors.NotFoundErr("no resource chain for id %q", id)
	}
	out := make([]*Resource, len(chain))
	for i, r := range chain {
		out[i] = cloneResource(r)
	}
	return out, nil
}

// ValidateResource checks a resource's internal consistency.
func ValidateResource(r *Resource) error {
	if r.ID == "" {
		return errors.InputErr("resource id is required")
	}
	if err := validateMIME(r.ContentType); err != nil {
		return err
	}
	if !hexHashPattern.MatchString(r.Hash) {
		return errors.InputErr("resource hash must be 64 lowercase hex characters")
	}
	if r.Version < 1 {
		return errors.InputErr("resource version must be >= 1")
	}
	if r.Version == 1 && r.PreviousVersionHash != "" {
		return errors.IntegrityErr("version 1 must not carry previousVersionHash")
	}
	if r.Version >= 2 && r.PreviousVersionHash == "" {
		return errors.IntegrityErr("version %d must carry previousVersionHash", r.Version)
	}
	if r.CreatedAt.IsZero() {
		return errors.InputErr("resource createdAt is required")
	}
	if r.Content != nil {
		if hashBytes(r.Content) != r.Hash {
			return errors.IntegrityErr("resource content does not match declared hash")
		}
	}
	return nil
}

// VerifyVersionChain asserts sequential version numbers and back-pointers.
func (m *Manager) VerifyVersionChain(id string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chain, ok := m.chains[id]
	if !ok {
		return errors.NotFoundErr("no resource chain for id %q", id)
	}
	for i, r := range chain {
		if r.Version != i+1 {
			return errors.IntegrityErr("resource %q version chain is out of sequence at index %d", id, i)
		}
		if i > 0 && r.PreviousVersionHash != chain[i-1].Hash {
			return errors.IntegrityErr("resource %q version %d has a broken back-pointer", id, r.Version)
		}
	}
	return nil
}

// HashContent computes the lower-case hex SHA-256 of content.
func HashContent(content []byte) string {
	return hashBytes(content)
}

// ImportResource registers a fully-formed external chain under its id,
// replacing any existing chain for that id.
func (m *Manager) ImportResource(chain []*Resource) error {
	if len(chain) == 0 {
		return errors.InputErr("cannot import an empty chain")
	}
	id := chain[0].ID
	for _, r := range chain {
		if err := ValidateResource(r); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains[id] = append([]*Resource(nil), chain...)
	return nil
}

// ExportResources serializes every tracked chain to JSON.
func (m *Manager) ExportResources() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return json.Marshal(m.chains)
}

// DeleteResource removes a resource chain entirely.
func (m *Manager) DeleteResource(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chains, id)
}

// Clear removes every tracked resource.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains = make(map[string][]*Resource)
}

func hashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func cloneResource(r *Resource) *Resource {
	cp := *r
	if r.Content != nil {
		cp.Content = append([]byte(nil), r.Content...)
	}
	if r.Metadata != nil {
		cp.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func newResourceID() string {
	return "res-" + uuid.NewString()
}
