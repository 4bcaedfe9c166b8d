package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.originals.dev/sdk/lifecycle"
)

// assetSnapshot is the on-disk representation of an asset written by this
// CLI. OriginalsAsset.Resources carry their content with a "json:-" tag
// (the wire representation the SDK issues to other callers omits it, since
// content usually lives in the storage adapter once published); the CLI
// keeps a local copy here so a freshly created asset can still be
// published or inscribed after a round trip through disk.
type assetSnapshot struct {
	Asset    *lifecycle.OriginalsAsset `json:"asset"`
	Contents map[string][]byte         `json:"contents"` // keyed by resource hash
}

func assetPath(stateDir, id string) string {
	safe := filepath.Base(id)
	return filepath.Join(stateDir, safe+".json")
}

func saveAsset(stateDir string, asset *lifecycle.OriginalsAsset) (string, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return "", err
	}
	contents := make(map[string][]byte, len(asset.Resources))
	for _, r := range asset.Resources {
		contents[r.Hash] = r.Content
	}
	snap := assetSnapshot{Asset: asset, Contents: contents}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}
	path := assetPath(stateDir, asset.ID)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func loadAsset(path string) (*lifecycle.OriginalsAsset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap assetSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	for _, r := range snap.Asset.Resources {
		r.Content = snap.Contents[r.Hash]
	}
	return snap.Asset, nil
}
