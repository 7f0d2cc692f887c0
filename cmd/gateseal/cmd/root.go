package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/spf13/cobra"

	"github.com/Siasom1/gateseal-devnet/artifacts"
	"github.com/Siasom1/gateseal-devnet/env"
	"github.com/Siasom1/gateseal-devnet/gateseal"
	"github.com/Siasom1/gateseal-devnet/log"
	"github.com/Siasom1/gateseal-devnet/node"
	"github.com/Siasom1/gateseal-devnet/params"
	"github.com/Siasom1/gateseal-devnet/registry"
)

const (
	configFlag     = "config"
	networkFlag    = "network"
	rpcFlag        = "rpc"
	keystoreFlag   = "keystore"
	artifactsFlag  = "artifacts"
	dataDirFlag    = "data-dir"
	logLevelFlag   = "log-level"
	logToFlag      = "log-to"
	jsonOutputFlag = "json"

	buildDir    = ".build"
	registryDir = "registry"
)

// errReported marks a failure whose message was already written by the outputter.
var errReported = errors.New("reported")

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	cfg := node.DefaultConfig()

	root := &cobra.Command{
		Use:           "gateseal",
		Short:         "Deploy and check GateSeal contracts against a development or live network",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setFlags(root, cfg)

	root.AddCommand(
		newConfigCmd(cfg),
		newDeployFactoryCmd(cfg),
		newDeployGateSealCmd(cfg),
		newCheckGateSealCmd(cfg),
		newCheckFactoryCmd(cfg),
		newMiningCmd(cfg),
		newDeploymentsCmd(cfg),
		newAccountsCmd(cfg),
	)

	return root
}

func setFlags(cmd *cobra.Command, cfg *node.Config) {
	flags := cmd.PersistentFlags()

	// network
	{
		flags.StringVar(&cfg.ConfigPath, configFlag, "", "the path to the network config. Supports .json, .hcl and .yaml")
		flags.StringVar(&cfg.Network, networkFlag, "", "the network profile to use (default: the config's default network)")
		flags.StringVar(&cfg.RPCURL, rpcFlag, cfg.RPCURL, "the JSON-RPC endpoint of the runtime")
	}

	// directories
	{
		flags.StringVar(&cfg.KeystoreDir, keystoreFlag, cfg.KeystoreDir, "the directory holding <alias>.json keystore files")
		flags.StringVar(&cfg.ArtifactsDir, artifactsFlag, cfg.ArtifactsDir, "the project root holding .build/ and deployed/")
		flags.StringVar(&cfg.DataDir, dataDirFlag, cfg.DataDir, "the data directory for the deployment registry")
	}

	// log and output
	{
		flags.StringVar(&cfg.LogLevel, logLevelFlag, cfg.LogLevel, "the log level for console output")
		flags.StringVar(&cfg.LogFile, logToFlag, "", "write all logs to the file at the specified location instead of writing them to console")
		flags.Bool(jsonOutputFlag, false, "get all outputs in json format (default false)")
	}
}

// runWith adapts a command body to cobra, routing its result through the outputter.
func runWith(cfg *node.Config, fn func(ctx context.Context, a *app, args []string) (CommandResult, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		out := newOutputter(cmd)
		defer out.flush()

		a, err := newApp(cfg, cmd.ErrOrStderr())
		if err != nil {
			out.setError(err)
			return errReported
		}

		result, err := fn(cmd.Context(), a, args)
		if err != nil {
			a.logger.Debug("command failed", "command", cmd.Name(), "err", err)
			out.setError(err)
			return errReported
		}

		out.setResult(result)

		return nil
	}
}

type app struct {
	cfg    *node.Config
	logger *log.Logger
	env    *env.Loader
}

func newApp(cfg *node.Config, console io.Writer) (*app, error) {
	logCfg := cfg.LogConfig()
	logCfg.Console = console

	logger, err := log.NewLoggerFromConfig(logCfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, env: env.NewLoader(logger)}, nil
}

// networks returns the network record: the --config file, or the built-in default.
func (a *app) networks() (*params.Config, error) {
	if a.cfg.ConfigPath == "" {
		return params.DefaultConfig(), nil
	}

	c, err := params.LoadConfig(a.cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", a.cfg.ConfigPath, err)
	}

	return c, nil
}

func (a *app) profile() (string, *params.NetworkConfig, error) {
	c, err := a.networks()
	if err != nil {
		return "", nil, err
	}

	name := a.cfg.Network
	if name == "" {
		name = c.DefaultNetwork
	}

	nc, err := c.Network(name)
	if err != nil {
		return "", nil, err
	}

	if name == "" && len(c.Networks) == 1 {
		name = c.Names()[0]
	}

	return name, nc, nil
}

func (a *app) dial(ctx context.Context) (*node.Node, error) {
	return node.Dial(ctx, a.cfg, a.logger)
}

// contract loads a compiled contract and checks its ABI against the bindings.
func (a *app) contract(name string, bindings abi.ABI) (*artifacts.Contract, error) {
	c, err := artifacts.LoadContract(filepath.Join(a.cfg.ArtifactsDir, buildDir), name)
	if err != nil {
		return nil, err
	}

	if err := gateseal.CheckABI(c.ABI, bindings); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return c, nil
}

func (a *app) openRegistry() (*registry.Registry, error) {
	return registry.Open(filepath.Join(a.cfg.DataDir, registryDir))
}

// record writes the deployment file and indexes it in the registry.
func (a *app) record(rec *artifacts.Record) (string, error) {
	path, err := artifacts.Save(a.cfg.ArtifactsDir, rec)
	if err != nil {
		return "", err
	}

	reg, err := a.openRegistry()
	if err != nil {
		return "", err
	}
	defer reg.Close()

	err = reg.Put(&registry.Entry{
		Network:     rec.Network,
		Kind:        rec.Kind,
		Address:     rec.Address,
		TxHash:      rec.TxHash,
		BlockNumber: rec.BlockNumber,
		File:        path,
	})
	if err != nil {
		return "", err
	}

	a.logger.Success("deployment recorded", "file", path)

	return path, nil
}
