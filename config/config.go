// Package config assembles the recognized SDK-wide configuration keys
// (network selection, key algorithm, injected collaborators) on top of the
// CLI's viper-backed settings loader, so the same config file/env/flag
// precedence used by the command line also governs a library caller that
// wants file-based configuration.
package config

import (
	"context"

	"go.originals.dev/sdk/cli"
	"go.originals.dev/sdk/crypto/signer"
	"go.originals.dev/sdk/did/btco"
	"go.originals.dev/sdk/encoding/multibase"
	"go.originals.dev/sdk/internal/errors"
	"go.originals.dev/sdk/lifecycle"
	"go.originals.dev/sdk/ordinals"
	"go.originals.dev/sdk/storage"
)

// Settings holds the recognized configuration keys described for the SDK:
// Bitcoin network selection, default key algorithm, the webvh network
// mapping, the ordinals provider's RPC endpoint, and a logging toggle.
type Settings struct {
	Network        string `mapstructure:"network"`
	DefaultKeyType string `mapstructure:"defaultKeyType"`
	WebVHNetwork   string `mapstructure:"webvhNetwork"`
	BitcoinRPCURL  string `mapstructure:"bitcoinRpcUrl"`
	EnableLogging  bool   `mapstructure:"enableLogging"`
}

// webvhNetworkToBitcoinNetwork maps a named webvh network onto the Bitcoin
// network whose BTCO prefix convention it shares.
var webvhNetworkToBitcoinNetwork = map[string]btco.Network{
	"mainnet": btco.Mainnet,
	"regtest": btco.Regtest,
	"signet":  btco.Signet,
}

func (s Settings) defaults() Settings {
	if s.Network == "" {
		s.Network = string(btco.Mainnet)
	}
	if s.DefaultKeyType == "" {
		s.DefaultKeyType = string(multibase.Ed25519)
	}
	if s.WebVHNetwork == "" {
		s.WebVHNetwork = s.Network
	}
	return s
}

// Load reads Settings from a config file discovered the same way the CLI
// discovers it (./config.yaml, $HOME/<app>, $HOME/.<app>, /etc/<app>, plus
// APP_-prefixed environment variables), under the optional sub-key.
func Load(app, key string) (Settings, error) {
	h := cli.ConfigHandler(app, nil)
	if err := h.ReadFile(true); err != nil {
		return Settings{}, errors.ExternalErr("reading configuration for %s: %v", app, err)
	}
	var s Settings
	if err := h.Unmarshal(&s, key); err != nil {
		return Settings{}, errors.EncodingErr("decoding configuration for %s: %v", app, err)
	}
	return s.defaults(), nil
}

// bitcoinNetwork resolves the Bitcoin network implied by Settings, preferring
// the explicit Network field over the webvh-to-bitcoin mapping.
func (s Settings) bitcoinNetwork() btco.Network {
	if net, ok := webvhNetworkToBitcoinNetwork[s.Network]; ok {
		return net
	}
	if net, ok := webvhNetworkToBitcoinNetwork[s.WebVHNetwork]; ok {
		return net
	}
	return btco.Mainnet
}

// keyAlgorithm maps the externally-recognized defaultKeyType strings
// (Ed25519, ES256K, ES256, the JOSE names used in configuration) onto the
// SDK's internal multibase.Algorithm values.
func (s Settings) keyAlgorithm() multibase.Algorithm {
	switch s.DefaultKeyType {
	case "ES256K":
		return multibase.Secp256k1
	case "ES256":
		return multibase.P256
	case string(multibase.BLS12381G2):
		return multibase.BLS12381G2
	default:
		return multibase.Ed25519
	}
}

// Collaborators carries the injected external dependencies Settings alone
// cannot construct: the fee oracle, ordinals provider, and storage adapter
// the spec calls out as caller-supplied collaborators.
type Collaborators struct {
	FeeOracle        func() (float64, error)
	OrdinalsProvider ordinals.Client
	StorageAdapter   storage.Adapter
}

// BuildLifecycleManager assembles a lifecycle.Manager from Settings and the
// caller-supplied Collaborators, wiring an HTTP-backed ordinals client from
// BitcoinRPCURL when no OrdinalsProvider override was supplied.
func BuildLifecycleManager(s Settings, collab Collaborators, suite *signer.Suite) *lifecycle.Manager {
	s = s.defaults()
	opts := []lifecycle.Option{
		lifecycle.WithNetwork(s.bitcoinNetwork()),
		lifecycle.WithDefaultKeyType(s.keyAlgorithm()),
	}

	if collab.StorageAdapter != nil {
		opts = append(opts, lifecycle.WithStorage(collab.StorageAdapter))
	}

	switch {
	case collab.OrdinalsProvider != nil:
		opts = append(opts, lifecycle.WithOrdinals(collab.OrdinalsProvider))
	case s.BitcoinRPCURL != "":
		opts = append(opts, lifecycle.WithOrdinals(ordinals.NewHTTPClient(s.BitcoinRPCURL)))
	}

	if collab.FeeOracle != nil {
		fn := collab.FeeOracle
		opts = append(opts, lifecycle.WithFeeOracle(func(_ context.Context) (float64, error) { return fn() }))
	}

	m := lifecycle.NewManager(opts...)
	m.Suite = suite
	return m
}
