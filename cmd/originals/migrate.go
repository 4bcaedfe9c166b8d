package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go.originals.dev/sdk/cli"
	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <asset-file> <webvh|btco>",
	Short: "Run an asset through the checkpointed migration orchestrator",
	Args:  cobra.ExactArgs(2),
	RunE:  runMigrate,
}

func init() {
	if err := cli.SetupCommandParams(migrateCmd, []cli.Param{
		{Name: "publisher", Usage: "did:webvh publisher id, required when migrating to webvh", FlagKey: "publisher", ByDefault: ""},
		{Name: "fee-rate", Usage: "explicit sats/vbyte fee rate, used when migrating to btco", FlagKey: "feeRate", ByDefault: float64(0)},
	}); err != nil {
		panic(err)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	asset, err := loadAsset(args[0])
	if err != nil {
		return err
	}

	var target did.Layer
	switch args[1] {
	case "webvh":
		target = did.WebVH
	case "btco":
		target = did.Btco
	default:
		return fmt.Errorf("unknown target layer %q, want webvh or btco", args[1])
	}

	opts := migration.MigrateOptions{}
	if publisher, _ := cmd.Flags().GetString("publisher"); publisher != "" {
		opts.Publisher = publisher
	}
	if rate, _ := cmd.Flags().GetFloat64("fee-rate"); rate > 0 {
		opts.FeeRate = &rate
	}

	result, err := current.migration.Migrate(context.Background(), asset, target, opts)
	if err != nil {
		return err
	}

	path, saveErr := saveAsset(current.stateDir, asset)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("migration %s: %s -> %s finished as %s -> %s\n",
		result.MigrationID, result.From, result.To, result.FinalState, path)
	if result.Err != nil {
		return result.Err
	}
	return nil
}
