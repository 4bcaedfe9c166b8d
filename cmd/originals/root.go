package main

import (
	"context"

	"github.com/spf13/cobra"

	"go.originals.dev/sdk/config"
	"go.originals.dev/sdk/crypto/signer"
	"go.originals.dev/sdk/did"
	"go.originals.dev/sdk/did/btco"
	"go.originals.dev/sdk/did/peer"
	"go.originals.dev/sdk/internal/log"
	"go.originals.dev/sdk/lifecycle"
	"go.originals.dev/sdk/migration"
	"go.originals.dev/sdk/ordinals"
	"go.originals.dev/sdk/storage"
)

// appName identifies the configuration file and environment variable prefix
// ("ORIGINALS_...") consulted by cli.ConfigHandler.
const appName = "originals"

// app bundles the managers a subcommand needs once configuration has been
// resolved; built once in rootCmd's PersistentPreRunE and shared by value.
type app struct {
	settings  config.Settings
	stateDir  string
	storage   storage.Adapter
	lifecycle *lifecycle.Manager
	migration *migration.Manager
	dids      *did.Manager
	logger    log.Logger
}

var current app

var rootCmd = &cobra.Command{
	Use:          appName,
	Short:        "Create, migrate and inspect Originals digital assets",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("network", "", "bitcoin network used to mint did:btco identifiers (mainnet, regtest, signet)")
	flags.String("default-key-type", "", "signing algorithm for newly created peer DIDs (Ed25519, ES256K, ES256)")
	flags.String("webvh-network", "", "network label recorded in webvh publications")
	flags.String("bitcoin-rpc-url", "", "ordinals/bitcoin RPC endpoint used for inscription and fee estimation")
	flags.Bool("enable-logging", false, "emit structured logs to stderr instead of discarding them")
	flags.String("state-dir", "./originals-state", "directory where asset snapshots and published resources are written")

	rootCmd.AddCommand(createCmd, publishCmd, inscribeCmd, transferCmd, migrateCmd, resolveCmd)
}

func bootstrap(cmd *cobra.Command) error {
	settings, err := config.Load(appName, "")
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("network"); v != "" {
		settings.Network = v
	}
	if v, _ := flags.GetString("default-key-type"); v != "" {
		settings.DefaultKeyType = v
	}
	if v, _ := flags.GetString("webvh-network"); v != "" {
		settings.WebVHNetwork = v
	}
	if v, _ := flags.GetString("bitcoin-rpc-url"); v != "" {
		settings.BitcoinRPCURL = v
	}
	if v, _ := flags.GetBool("enable-logging"); v {
		settings.EnableLogging = v
	}
	stateDir, _ := flags.GetString("state-dir")
	if stateDir == "" {
		stateDir = "./originals-state"
	}

	logger := log.Discard()
	if settings.EnableLogging {
		logger = log.WithCharm(log.CharmOptions{Prefix: appName})
	}

	adapter, err := storage.NewFileAdapter(stateDir)
	if err != nil {
		return err
	}

	lm := config.BuildLifecycleManager(settings, config.Collaborators{StorageAdapter: adapter}, signer.NewSuite())
	lm.Log = logger

	mm := migration.NewManager(lm, migration.WithLogger(logger))

	peerResolver := did.ResolverFunc(func(_ context.Context, id string) (*did.Document, error) {
		return peer.Resolve(id)
	})
	var btcoResolver did.Resolver
	if lm.Ordinals != nil {
		resolver := btco.NewResolver(ordinals.AsInscriptionProvider(lm.Ordinals))
		btcoResolver = did.ResolverFunc(func(ctx context.Context, id string) (*did.Document, error) {
			res, err := resolver.Resolve(ctx, id, "")
			if err != nil {
				return nil, err
			}
			return res.Document, nil
		})
	}
	dm := did.NewManager(peerResolver, nil, btcoResolver, logger)

	current = app{
		settings:  settings,
		stateDir:  stateDir,
		storage:   adapter,
		lifecycle: lm,
		migration: mm,
		dids:      dm,
		logger:    logger,
	}
	return nil
}
