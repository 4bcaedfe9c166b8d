package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <asset-file> <new-owner>",
	Short: "Record an ownership transfer for a btco-layer asset",
	Args:  cobra.ExactArgs(2),
	RunE:  runTransfer,
}

func runTransfer(cmd *cobra.Command, args []string) error {
	asset, err := loadAsset(args[0])
	if err != nil {
		return err
	}
	newOwner := args[1]

	if err := current.lifecycle.TransferOwnership(context.Background(), asset, newOwner); err != nil {
		return err
	}

	path, err := saveAsset(current.stateDir, asset)
	if err != nil {
		return err
	}
	fmt.Printf("transferred %s to %s -> %s\n", asset.ID, newOwner, path)
	return nil
}
