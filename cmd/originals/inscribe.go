package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"go.originals.dev/sdk/cli"
)

var inscribeCmd = &cobra.Command{
	Use:   "inscribe <asset-file>",
	Short: "Migrate an asset to the btco layer by inscribing it on Bitcoin",
	Args:  cobra.ExactArgs(1),
	RunE:  runInscribe,
}

func init() {
	if err := cli.SetupCommandParams(inscribeCmd, []cli.Param{
		{Name: "fee-rate", Usage: "explicit sats/vbyte fee rate; defaults to the configured fee oracle or ordinals provider", FlagKey: "feeRate", ByDefault: float64(0)},
	}); err != nil {
		panic(err)
	}
}

func runInscribe(cmd *cobra.Command, args []string) error {
	asset, err := loadAsset(args[0])
	if err != nil {
		return err
	}

	var feeRate *float64
	if v, _ := cmd.Flags().GetFloat64("fee-rate"); v > 0 {
		feeRate = &v
	}

	if err := current.lifecycle.InscribeOnBitcoin(context.Background(), asset, feeRate); err != nil {
		return err
	}

	path, err := saveAsset(current.stateDir, asset)
	if err != nil {
		return err
	}
	fmt.Printf("inscribed %s -> %s\n", asset.ID, path)
	return nil
}
