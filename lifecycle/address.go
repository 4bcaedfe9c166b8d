package lifecycle

import (
	"crypto/sha256"
	"strings"

	"github.com/mr-tron/base58"

	"go.originals.dev/sdk/did/btco"
	"go.originals.dev/sdk/internal/errors"
)

// base58CheckVersions lists the P2PKH/P2SH version bytes accepted for a
// network's legacy addresses.
var base58CheckVersions = map[btco.Network][]byte{
	btco.Mainnet: {0x00, 0x05},
	btco.Regtest: {0x6f, 0xc4},
	btco.Signet:  {0x6f, 0xc4},
}

// bech32HRP lists the human-readable part accepted for a network's native
// segwit addresses.
var bech32HRP = map[btco.Network]string{
	btco.Mainnet: "bc",
	btco.Regtest: "bcrt",
	btco.Signet:  "tb",
}

// validateBitcoinAddress rejects any string that is not a structurally
// valid base58check (legacy/P2SH) or bech32/bech32m (native segwit)
// address for network. It does not consult a node, so it cannot tell
// whether the address has ever been used; it only rejects malformed input
// and addresses minted for a different network.
func validateBitcoinAddress(address string, network btco.Network) error {
	if address == "" {
		return errors.InputErr("newOwner address must not be empty")
	}
	if hrp, data, ok := splitBech32(address); ok {
		want, known := bech32HRP[network]
		if !known {
			return errors.InputErr("no bech32 prefix configured for network %q", network)
		}
		if !strings.EqualFold(hrp, want) {
			return errors.InputErr("address %q has bech32 prefix %q, expected %q for network %q", address, hrp, want, network)
		}
		if err := verifyBech32Checksum(hrp, data); err != nil {
			return errors.InputErr("address %q is not valid bech32: %v", address, err)
		}
		return nil
	}

	raw, err := base58.Decode(address)
	if err != nil {
		return errors.InputErr("address %q is neither valid bech32 nor base58check: %v", address, err)
	}
	if len(raw) != 25 {
		return errors.InputErr("address %q has invalid base58check length %d", address, len(raw))
	}
	payload, checksum := raw[:21], raw[21:]
	sum := sha256.Sum256(payload)
	sum = sha256.Sum256(sum[:])
	if string(sum[:4]) != string(checksum) {
		return errors.InputErr("address %q fails base58check checksum", address)
	}
	versions, known := base58CheckVersions[network]
	if !known {
		return errors.InputErr("no base58check versions configured for network %q", network)
	}
	version := payload[0]
	for _, v := range versions {
		if v == version {
			return nil
		}
	}
	return errors.InputErr("address %q version byte 0x%02x is not valid on network %q", address, version, network)
}

// splitBech32 reports whether address looks like a bech32 string (a known
// human-readable part followed by a '1' separator and a data part long
// enough to carry a checksum) and, if so, returns the hrp and the
// lowercased part after the separator.
func splitBech32(address string) (hrp, data string, ok bool) {
	sep := strings.LastIndexByte(address, '1')
	if sep < 1 || sep+7 > len(address) {
		return "", "", false
	}
	candidate := strings.ToLower(address[:sep])
	switch candidate {
	case "bc", "tb", "bcrt":
		return candidate, strings.ToLower(address[sep+1:]), true
	default:
		return "", "", false
	}
}

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// bech32Const and bech32mConst are the polymod targets for the original
// (BIP-173) and the taproot-era (BIP-350) bech32 checksums, respectively.
const bech32Const = 1
const bech32mConst = 0x2bc830a3

// verifyBech32Checksum validates data (the part of a bech32 string after
// the separator, including its trailing 6-character checksum) against
// hrp using the BIP-173/BIP-350 polymod.
func verifyBech32Checksum(hrp, data string) error {
	if len(data) < 6 {
		return errors.InputErr("bech32 data part too short")
	}
	values := make([]int, len(data))
	for i := 0; i < len(data); i++ {
		idx := strings.IndexByte(bech32Charset, data[i])
		if idx < 0 {
			return errors.InputErr("invalid bech32 character %q", data[i])
		}
		values[i] = idx
	}
	mod := bech32Polymod(append(bech32HRPExpand(hrp), values...))
	if mod != bech32Const && mod != bech32mConst {
		return errors.InputErr("checksum mismatch")
	}
	return nil
}

func bech32HRPExpand(hrp string) []int {
	ret := make([]int, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		ret = append(ret, int(hrp[i])>>5)
	}
	ret = append(ret, 0)
	for i := 0; i < len(hrp); i++ {
		ret = append(ret, int(hrp[i])&31)
	}
	return ret
}

func bech32Polymod(values []int) int {
	generator := [5]int{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := 1
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ v
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}
