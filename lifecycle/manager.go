// Package lifecycle implements the OriginalsAsset state machine: creation
// at the peer layer, publication to webvh, inscription onto btco, and
// ownership transfer, with batch variants and an in-process event bus.
package lifecycle

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.originals.dev/sdk/credential"
	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/did/btco"
	"go.originals.dev/sdk/did/peer"
	signerpkg "go.originals.dev/sdk/crypto/signer"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
	"go.originals.dev/sdk/internal/log"
	"go.originals.dev/sdk/keystore"
	"go.originals.dev/sdk/ordinals"
	"go.originals.dev/sdk/resource"
	"go.originals.dev/sdk/storage"
)

// candidateKeyFragments are the verification method fragments tried, in
// order, when resolving a publisher's registered signing key by DID alone.
var candidateKeyFragments = []string{"#key-0", "#keys-1", "#authentication"}

// Manager orchestrates the full asset lifecycle across layers.
type Manager struct {
	Keys           *keystore.Store
	Suite          *signerpkg.Suite
	Issuer         *credential.Issuer
	Storage        storage.Adapter
	Ordinals       ordinals.Client
	Network        btco.Network
	DefaultKeyType multibase.Algorithm
	FeeOracle      func(ctx context.Context) (float64, error)
	Events         *EventEmitter
	Log            log.Logger

	// assetLocks serializes mutating methods per asset DID, so two
	// goroutines driving the same OriginalsAsset (e.g. a migration and a
	// batch transfer racing each other) never interleave writes to its
	// Provenance/Resources/Bindings fields.
	assetLocks sync.Map // map[string]*sync.Mutex
}

// lockAsset acquires the per-asset mutex for id, creating it on first use,
// and returns a function that releases it.
func (m *Manager) lockAsset(id string) func() {
	v, _ := m.assetLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// keystoreSigner implements integrity.Signer by treating the
// "privateKeyMultibase" argument the engine hands it as a KeyStore
// reference rather than a raw secret, so credential issuance never needs a
// caller-held copy of the signing key.
type keystoreSigner struct {
	store *keystore.Store
	suite *signerpkg.Suite
}

func (k keystoreSigner) Sign(ctx context.Context, message []byte, ref string) ([]byte, error) {
	return k.store.Sign(ctx, ref, message, k.suite)
}

// Option configures a Manager.
type Option func(*Manager)

// WithKeyStore injects the KeyStore used to generate and sign with asset
// keys.
func WithKeyStore(store *keystore.Store) Option { return func(m *Manager) { m.Keys = store } }

// WithStorage injects the StorageAdapter used to publish resource content.
func WithStorage(adapter storage.Adapter) Option { return func(m *Manager) { m.Storage = adapter } }

// WithOrdinals injects the OrdinalsClient used for inscription operations.
func WithOrdinals(client ordinals.Client) Option { return func(m *Manager) { m.Ordinals = client } }

// WithNetwork selects the Bitcoin network used to mint did:btco identifiers.
func WithNetwork(network btco.Network) Option { return func(m *Manager) { m.Network = network } }

// WithDefaultKeyType selects the algorithm used for newly created peer DIDs.
func WithDefaultKeyType(alg multibase.Algorithm) Option {
	return func(m *Manager) { m.DefaultKeyType = alg }
}

// WithFeeOracle injects a fee-rate source consulted by EstimateCost ahead of
// the ordinals provider and the package default.
func WithFeeOracle(fn func(ctx context.Context) (float64, error)) Option {
	return func(m *Manager) { m.FeeOracle = fn }
}

// WithLogger injects a structured logger; defaults to a discard logger.
func WithLogger(logger log.Logger) Option { return func(m *Manager) { m.Log = logger } }

// NewManager constructs a Manager with Ed25519 as the default key type, the
// btco mainnet network, its own EventEmitter and a discard logger, applies
// opts, and creates a fresh KeyStore if none was supplied. Issuer and Suite
// are left nil, so no credentials are issued until the caller sets them.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		DefaultKeyType: multibase.Ed25519,
		Network:        btco.Mainnet,
		Events:         NewEventEmitter(),
		Log:            log.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.Keys == nil {
		m.Keys = keystore.New()
	}
	return m
}

// ResourceInput describes one resource bound into a newly created asset.
type ResourceInput struct {
	ID          string
	Type        string
	ContentType string
	Hash        string
	Content     []byte
	Metadata    map[string]string
}

// CreateAsset validates each resource structurally, mints a peer DID,
// registers its private key under the absolutized verification method id,
// and, when Issuer, Keys and Suite are all set, issues a ResourceCreated
// credential per resource; issuance errors are ignored.
func (m *Manager) CreateAsset(ctx context.Context, resources []ResourceInput) (*OriginalsAsset, error) {
	if len(resources) == 0 {
		return nil, errors.InputErr("createAsset requires at least one resource")
	}
	for _, r := range resources {
		if r.ID == "" || r.Type == "" || r.ContentType == "" || r.Hash == "" {
			return nil, errors.InputErr("resource %q is missing required fields", r.ID)
		}
	}

	doc, err := peer.Create(ctx, m.Keys, m.DefaultKeyType)
	if err != nil {
		return nil, err
	}
	vmID := doc.VerificationMethod[0].ID
	now := time.Now().UTC()

	asset := &OriginalsAsset{
		ID:           doc.ID,
		CurrentLayer: did.Peer,
		Bindings:     map[did.Layer]string{did.Peer: doc.ID},
		Provenance:   Provenance{CreatedAt: now, Creator: doc.ID},
	}

	for _, r := range resources {
		res := &resource.Resource{
			ID:          r.ID,
			Type:        r.Type,
			ContentType: r.ContentType,
			Hash:        r.Hash,
			Size:        int64(len(r.Content)),
			Version:     1,
			CreatedAt:   now,
			Content:     r.Content,
			Metadata:    r.Metadata,
		}
		asset.Resources = append(asset.Resources, res)

		if m.Issuer != nil && m.Keys != nil && m.Suite != nil {
			vc, err := m.Issuer.IssueResourceCreated(ctx, credential.ResourceCreatedSubject{
				AssetID:     asset.ID,
				ResourceID:  r.ID,
				Type:        r.Type,
				ContentType: r.ContentType,
				ContentHash: r.Hash,
				Creator:     asset.ID,
				CreatedAt:   now,
			}, keystoreSigner{m.Keys, m.Suite}, vmID, vmID)
			if err == nil && vc != nil {
				asset.Credentials = append(asset.Credentials, *vc)
				m.Events.Emit("credential:issued", vc)
			}
		}
	}

	m.Events.Emit("asset:created", asset)
	return asset, nil
}

// PublishToWeb publishes every resource to the StorageAdapter under the
// publisher's DID and migrates the asset to the webvh layer. publisher is
// either a did:webvh:* string or a credential.ExternalSigner.
func (m *Manager) PublishToWeb(ctx context.Context, asset *OriginalsAsset, publisher interface{}) error {
	defer m.lockAsset(asset.ID)()
	if asset.CurrentLayer != did.Peer {
		return errors.InvalidTransitionErr("publishToWeb requires currentLayer=peer, got %q", asset.CurrentLayer)
	}
	if m.Storage == nil {
		return errors.ExternalErr("publishToWeb requires a configured storage adapter")
	}

	publisherDID, externalSigner, err := resolvePublisher(ctx, publisher)
	if err != nil {
		return err
	}

	for _, r := range asset.Resources {
		key, err := resourceObjectKey(publisherDID, r.Hash)
		if err != nil {
			return err
		}
		if err := m.Storage.Put(ctx, key, r.Content, storage.PutOptions{ContentType: r.ContentType}); err != nil {
			return err
		}
		r.URL = publisherDID + "/resources/" + key[strings.LastIndex(key, "/")+1:]
		m.Events.Emit("resource:published", r)
	}

	asset.CurrentLayer = did.WebVH
	asset.Bindings[did.WebVH] = publisherDID
	asset.Provenance.Migrations = append(asset.Provenance.Migrations, MigrationRecord{
		From: did.Peer, To: did.WebVH, Timestamp: time.Now().UTC(),
	})

	m.issueMigrationCredentialBestEffort(ctx, asset, did.Peer, did.WebVH, publisherDID, externalSigner)
	return nil
}

func resolvePublisher(ctx context.Context, publisher interface{}) (string, credential.ExternalSigner, error) {
	switch p := publisher.(type) {
	case string:
		if !strings.HasPrefix(p, "did:webvh:") {
			return "", nil, errors.InputErr("publisher DID must use the did:webvh method, got %q", p)
		}
		return p, nil, nil
	case credential.ExternalSigner:
		vmID, err := p.VerificationMethodID(ctx)
		if err != nil {
			return "", nil, err
		}
		publisherDID := vmID
		if i := strings.Index(vmID, "#"); i != -1 {
			publisherDID = vmID[:i]
		}
		return publisherDID, p, nil
	default:
		return "", nil, errors.InputErr("publisher must be a did:webvh string or an ExternalSigner")
	}
}

func resourceObjectKey(publisherDID, hash string) (string, error) {
	raw, err := hex.DecodeString(hash)
	if err != nil {
		raw = []byte(hash)
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	domain := strings.TrimPrefix(publisherDID, "did:webvh:")
	return domain + "/resources/" + encoded, nil
}

// issueMigrationCredentialBestEffort attempts to sign a ResourceMigrated
// credential for a layer transition. When an external signer is supplied it
// is the only signer tried; otherwise the credential is signed with the
// first candidate verification-method id (target DID plus a common
// fragment) registered in the KeyStore. Failure is swallowed: credential
// issuance on migration is advisory, not a precondition for the migration
// itself.
func (m *Manager) issueMigrationCredentialBestEffort(ctx context.Context, asset *OriginalsAsset, from, to did.Layer, targetDID string, external credential.ExternalSigner) {
	if m.Issuer == nil {
		return
	}
	sub := credential.ResourceMigratedSubject{
		AssetID: asset.ID, FromLayer: string(from), ToLayer: string(to), MigratedAt: time.Now().UTC(),
	}

	if external != nil {
		vmID, err := external.VerificationMethodID(ctx)
		if err != nil {
			return
		}
		vc, err := m.Issuer.IssueResourceMigrated(ctx, asset.ID, sub, externalSignerAdapter{external}, "", vmID)
		if err == nil {
			asset.Credentials = append(asset.Credentials, *vc)
			m.Events.Emit("credential:issued", vc)
		}
		return
	}

	if m.Keys == nil || m.Suite == nil {
		return
	}
	for _, frag := range candidateKeyFragments {
		ref := targetDID + frag
		if m.Keys.Has(ref) {
			vc, err := m.Issuer.IssueResourceMigrated(ctx, asset.ID, sub, keystoreSigner{m.Keys, m.Suite}, ref, ref)
			if err == nil {
				asset.Credentials = append(asset.Credentials, *vc)
				m.Events.Emit("credential:issued", vc)
			}
			return
		}
	}
}

// externalSignerAdapter adapts a credential.ExternalSigner to the
// integrity.Signer contract the engine's CreateProof expects.
type externalSignerAdapter struct {
	signer credential.ExternalSigner
}

func (a externalSignerAdapter) Sign(ctx context.Context, message []byte, _ string) ([]byte, error) {
	proofValue, err := a.signer.Sign(ctx, message)
	if err != nil {
		return nil, err
	}
	_, _, raw, err := multibase.Decode(proofValue)
	if err != nil {
		return []byte(proofValue), nil
	}
	return raw, nil
}

// manifest is the payload handed to the ordinals provider for inscription.
type manifest struct {
	AssetID   string             `json:"assetId"`
	Resources []manifestResource `json:"resources"`
	Timestamp time.Time          `json:"timestamp"`
}

type manifestResource struct {
	ID          string `json:"id"`
	Hash        string `json:"hash"`
	ContentType string `json:"contentType"`
	URL         string `json:"url,omitempty"`
}

func buildManifest(asset *OriginalsAsset) manifest {
	man := manifest{AssetID: asset.ID, Timestamp: time.Now().UTC()}
	for _, r := range asset.Resources {
		man.Resources = append(man.Resources, manifestResource{ID: r.ID, Hash: r.Hash, ContentType: r.ContentType, URL: r.URL})
	}
	return man
}

// InscribeOnBitcoin inscribes asset's manifest via the configured
// OrdinalsClient and migrates the asset to the btco layer.
func (m *Manager) InscribeOnBitcoin(ctx context.Context, asset *OriginalsAsset, feeRate *float64) error {
	defer m.lockAsset(asset.ID)()
	if asset.CurrentLayer != did.Peer && asset.CurrentLayer != did.WebVH {
		return errors.InvalidTransitionErr("inscribeOnBitcoin requires currentLayer in {peer, webvh}, got %q", asset.CurrentLayer)
	}
	if m.Ordinals == nil {
		return errors.ExternalErr("inscribeOnBitcoin requires a configured ordinals provider")
	}
	if feeRate != nil && (*feeRate < 1 || *feeRate > 1_000_000) {
		return errors.InputErr("feeRate %f sat/vB out of range [1, 1000000]", *feeRate)
	}

	man := buildManifest(asset)
	payload, err := json.Marshal(man)
	if err != nil {
		return errors.EncodingErr("marshaling inscription manifest: %v", err)
	}

	result, err := m.Ordinals.InscribeData(ctx, payload, "application/json", feeRate)
	if err != nil {
		return err
	}

	fromLayer := asset.CurrentLayer
	asset.CurrentLayer = did.Btco

	var btcoDID string
	if result.Satoshi != nil {
		btcoDID, err = btco.DIDForSatoshi(*result.Satoshi, m.Network)
		if err != nil {
			return err
		}
	} else {
		btcoDID = "did:btco:" + result.InscriptionID
	}
	asset.Bindings[did.Btco] = btcoDID

	txID := result.TxID
	if txID == "" {
		txID = result.RevealTxID
	}
	rate := 0.0
	if feeRate != nil {
		rate = *feeRate
	} else {
		rate = result.FeeRate
	}
	asset.Provenance.Migrations = append(asset.Provenance.Migrations, MigrationRecord{
		From: fromLayer, To: did.Btco, Timestamp: time.Now().UTC(),
		TransactionID: txID, InscriptionID: result.InscriptionID, Satoshi: result.Satoshi,
		CommitTxID: result.CommitTxID, RevealTxID: result.RevealTxID, FeeRate: rate,
	})
	return nil
}

// TransferOwnership delegates ownership transfer of a btco-layer asset to
// the ordinals provider and records the transfer in provenance.
func (m *Manager) TransferOwnership(ctx context.Context, asset *OriginalsAsset, newOwner string) error {
	defer m.lockAsset(asset.ID)()
	if asset.CurrentLayer != did.Btco {
		return errors.InvalidTransitionErr("transferOwnership requires currentLayer=btco, got %q", asset.CurrentLayer)
	}
	if m.Ordinals == nil {
		return errors.ExternalErr("transferOwnership requires a configured ordinals provider")
	}
	if err := validateBitcoinAddress(newOwner, m.Network); err != nil {
		return err
	}

	inscriptionID := asset.Provenance.Migrations[len(asset.Provenance.Migrations)-1].InscriptionID
	result, err := m.Ordinals.TransferInscription(ctx, inscriptionID, newOwner)
	if err != nil {
		return err
	}

	from := asset.Bindings[did.Btco]
	asset.Provenance.Transfers = append(asset.Provenance.Transfers, TransferRecord{
		From: from, To: newOwner, Timestamp: time.Now().UTC(), TransactionID: result.TxID,
	})
	return nil
}

// ValidateMigration enforces the forward-only transition table, checks
// resource structure, and requires an ordinals provider for btco targets.
func (m *Manager) ValidateMigration(asset *OriginalsAsset, target did.Layer) error {
	if err := CheckTransition(asset.CurrentLayer, target); err != nil {
		return err
	}
	for _, r := range asset.Resources {
		if r.ID == "" || r.Hash == "" {
			return errors.IntegrityErr("resource %q has malformed identity", r.ID)
		}
	}
	if target == did.Btco && m.Ordinals == nil {
		return errors.ExternalErr("migrating to btco requires a configured ordinals provider")
	}
	man := buildManifest(asset)
	raw, err := json.Marshal(man)
	if err == nil && len(raw) > 100_000 {
		m.Log.Warningf("migration manifest for asset %s exceeds 100kB (%d bytes)", asset.ID, len(raw))
	}
	return nil
}
