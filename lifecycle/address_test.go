package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go.originals.dev/sdk/did/btco"
)

func TestValidateBitcoinAddressAcceptsMainnetBech32(t *testing.T) {
	err := validateBitcoinAddress("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", btco.Mainnet)
	assert.NoError(t, err)
}

func TestValidateBitcoinAddressRejectsWrongNetworkBech32(t *testing.T) {
	err := validateBitcoinAddress("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", btco.Regtest)
	assert.Error(t, err)
}

func TestValidateBitcoinAddressRejectsBadChecksum(t *testing.T) {
	err := validateBitcoinAddress("bc1qnewowner", btco.Mainnet)
	assert.Error(t, err)
}

func TestValidateBitcoinAddressAcceptsMainnetBase58Check(t *testing.T) {
	err := validateBitcoinAddress("1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", btco.Mainnet)
	assert.NoError(t, err)
}

func TestValidateBitcoinAddressRejectsMainnetAddressOnRegtest(t *testing.T) {
	err := validateBitcoinAddress("1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", btco.Regtest)
	assert.Error(t, err)
}

func TestValidateBitcoinAddressRejectsEmpty(t *testing.T) {
	err := validateBitcoinAddress("", btco.Mainnet)
	assert.Error(t, err)
}

func TestValidateBitcoinAddressRejectsGarbage(t *testing.T) {
	err := validateBitcoinAddress("not-an-address", btco.Mainnet)
	assert.Error(t, err)
}
