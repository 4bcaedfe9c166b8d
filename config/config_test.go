package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.originals.dev/sdk/config"
	"go.originals.dev/sdk/crypto/signer"
	"go.originals.dev/sdk/did/btco"
	"go.originals.dev/sdk/ordinals"
)

func TestBuildLifecycleManagerAppliesDefaults(t *testing.T) {
	m := config.BuildLifecycleManager(config.Settings{}, config.Collaborators{}, signer.NewSuite())
	require.NotNil(t, m)
	assert.Equal(t, btco.Mainnet, m.Network)
}

func TestBuildLifecycleManagerMapsRegtestNetwork(t *testing.T) {
	m := config.BuildLifecycleManager(config.Settings{Network: "regtest"}, config.Collaborators{}, signer.NewSuite())
	assert.Equal(t, btco.Regtest, m.Network)
}

func TestBuildLifecycleManagerPrefersExplicitOrdinalsProvider(t *testing.T) {
	provider := ordinals.NewHTTPClient("http://localhost:9999")
	m := config.BuildLifecycleManager(config.Settings{BitcoinRPCURL: "http://example.com"}, config.Collaborators{OrdinalsProvider: provider}, signer.NewSuite())
	assert.Same(t, provider, m.Ordinals)
}

func TestBuildLifecycleManagerWiresHTTPOrdinalsFromConfig(t *testing.T) {
	m := config.BuildLifecycleManager(config.Settings{BitcoinRPCURL: "http://example.com"}, config.Collaborators{}, signer.NewSuite())
	require.NotNil(t, m.Ordinals)
	_, ok := m.Ordinals.(*ordinals.HTTPClient)
	assert.True(t, ok)
}

func TestBuildLifecycleManagerWiresFeeOracle(t *testing.T) {
	called := false
	m := config.BuildLifecycleManager(config.Settings{}, config.Collaborators{
		FeeOracle: func() (float64, error) {
			called = true
			return 7, nil
		},
	}, signer.NewSuite())

	require.NotNil(t, m.FeeOracle)
	rate, err := m.FeeOracle(nil) //nolint:staticcheck // the adapter never consults ctx
	require.NoError(t, err)
	assert.Equal(t, 7.0, rate)
	assert.True(t, called)
}
