package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <asset-file> <publisher-did>",
	Short: "Migrate an asset from the peer layer to the webvh layer",
	Args:  cobra.ExactArgs(2),
	RunE:  runPublish,
}

func runPublish(cmd *cobra.Command, args []string) error {
	asset, err := loadAsset(args[0])
	if err != nil {
		return err
	}
	publisherDID := args[1]

	if err := current.lifecycle.PublishToWeb(context.Background(), asset, publisherDID); err != nil {
		return err
	}

	path, err := saveAsset(current.stateDir, asset)
	if err != nil {
		return err
	}
	fmt.Printf("published %s to %s -> %s\n", asset.ID, publisherDID, path)
	return nil
}
