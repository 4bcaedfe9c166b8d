package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"go.originals.dev/sdk/lifecycle"
	"go.originals.dev/sdk/resource"
)

var createCmd = &cobra.Command{
	Use:   "create <file>...",
	Short: "Create a new asset at the peer layer from one or more local files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	inputs := make([]lifecycle.ResourceInput, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		contentType := http.DetectContentType(content)
		inputs = append(inputs, lifecycle.ResourceInput{
			ID:          filepath.Base(path),
			Type:        resource.InferResourceType(contentType),
			ContentType: contentType,
			Hash:        resource.HashContent(content),
			Content:     content,
		})
	}

	asset, err := current.lifecycle.CreateAsset(context.Background(), inputs)
	if err != nil {
		return err
	}

	path, err := saveAsset(current.stateDir, asset)
	if err != nil {
		return err
	}
	fmt.Printf("created asset %s (did:peer) -> %s\n", asset.ID, path)
	return nil
}
