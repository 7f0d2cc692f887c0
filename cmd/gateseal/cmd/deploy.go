package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"

	"github.com/Siasom1/gateseal-devnet/artifacts"
	"github.com/Siasom1/gateseal-devnet/blueprint"
	"github.com/Siasom1/gateseal-devnet/deployer"
	"github.com/Siasom1/gateseal-devnet/gateseal"
	"github.com/Siasom1/gateseal-devnet/node"
)

const (
	gateSealContract = "GateSeal"
	factoryContract  = "GateSealFactory"
	sealableContract = "SealableMock"
)

func newDeployFactoryCmd(cfg *node.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy-factory",
		Short: "Deploy the GateSeal blueprint and the GateSealFactory",
		Long: `Deploys the GateSeal blueprint (EIP-5202) and a GateSealFactory using it.
Set BLUEPRINT to reuse an already deployed blueprint.`,
		Args: cobra.NoArgs,
		RunE: runWith(cfg, deployFactory),
	}
}

func deployFactory(ctx context.Context, a *app, _ []string) (CommandResult, error) {
	n, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer n.Close()

	sender, err := deployer.Get(ctx, n, a.env)
	if err != nil {
		return nil, err
	}

	gs, err := a.contract(gateSealContract, gateseal.GateSealABI)
	if err != nil {
		return nil, err
	}

	factoryType, err := a.contract(factoryContract, gateseal.FactoryABI)
	if err != nil {
		return nil, err
	}

	initcode, err := blueprint.Initcode(gs.Bytecode)
	if err != nil {
		return nil, err
	}
	if _, err := blueprint.VerifyDeployPreamble(initcode); err != nil {
		return nil, err
	}

	res := &DeployFactoryResult{Network: n.NetworkName()}

	if raw := a.env.Optional("BLUEPRINT"); raw != "" {
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("BLUEPRINT: %q is not an address", raw)
		}
		res.Blueprint = common.HexToAddress(raw)

		if _, err := blueprint.VerifyAt(ctx, n.Client, res.Blueprint); err != nil {
			return nil, err
		}
		a.logger.Success("blueprint reused", "address", res.Blueprint)
	} else {
		var receipt *types.Receipt

		res.Blueprint, receipt, err = blueprint.Deploy(ctx, n.Client, sender, initcode)
		if err != nil {
			return nil, err
		}
		a.logger.Success("blueprint deployed", "address", res.Blueprint)

		res.BlueprintFile, err = a.record(&artifacts.Record{
			Network:     res.Network,
			Kind:        artifacts.KindBlueprint,
			Address:     res.Blueprint,
			Deployer:    sender.Address(),
			TxHash:      receipt.TxHash,
			BlockNumber: receipt.BlockNumber.Uint64(),
		})
		if err != nil {
			return nil, err
		}
	}

	factory, receipt, err := gateseal.DeployFactory(ctx, n.Client, sender, factoryType.Bytecode, res.Blueprint)
	if err != nil {
		return nil, err
	}
	res.Factory = factory.Address()

	a.logger.Success("factory deployed", "address", res.Factory)

	blueprintAddr := res.Blueprint
	res.FactoryFile, err = a.record(&artifacts.Record{
		Network:     res.Network,
		Kind:        artifacts.KindFactory,
		Address:     res.Factory,
		Deployer:    sender.Address(),
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		Blueprint:   &blueprintAddr,
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

type DeployFactoryResult struct {
	Network       string         `json:"network"`
	Blueprint     common.Address `json:"blueprint"`
	BlueprintFile string         `json:"blueprint_file,omitempty"`
	Factory       common.Address `json:"factory"`
	FactoryFile   string         `json:"factory_file"`
}

func (r *DeployFactoryResult) GetOutput() string {
	var b strings.Builder

	b.WriteString("[FACTORY DEPLOYED]\n")
	fmt.Fprintf(&b, "Network   = %s\n", r.Network)
	fmt.Fprintf(&b, "Blueprint = %s\n", r.Blueprint.Hex())
	fmt.Fprintf(&b, "Factory   = %s\n", r.Factory.Hex())
	fmt.Fprintf(&b, "File      = %s", r.FactoryFile)

	return b.String()
}

func newDeployGateSealCmd(cfg *node.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy-gate-seal",
		Short: "Create a GateSeal through the factory",
		Long: `Creates a GateSeal from environment variables:
FACTORY, SEALING_COMMITTEE, SEAL_DURATION_SECONDS, SEALABLES (comma separated)
and EXPIRY_PERIOD (seconds from the latest block).`,
		Args: cobra.NoArgs,
		RunE: runWith(cfg, deployGateSeal),
	}
}

func deployGateSeal(ctx context.Context, a *app, _ []string) (CommandResult, error) {
	factoryAddr, err := a.env.Address("FACTORY")
	if err != nil {
		return nil, err
	}

	var p gateseal.Params

	if p.SealingCommittee, err = a.env.Address("SEALING_COMMITTEE"); err != nil {
		return nil, err
	}
	if p.SealDurationSeconds, err = a.env.Uint64("SEAL_DURATION_SECONDS"); err != nil {
		return nil, err
	}
	if p.Sealables, err = a.env.Addresses("SEALABLES"); err != nil {
		return nil, err
	}
	expiryPeriod, err := a.env.Uint64("EXPIRY_PERIOD")
	if err != nil {
		return nil, err
	}

	n, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer n.Close()

	sender, err := deployer.Get(ctx, n, a.env)
	if err != nil {
		return nil, err
	}

	head, err := n.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}

	p.ExpiryTimestamp = head.Time + expiryPeriod

	if err := p.Validate(head.Time); err != nil {
		return nil, err
	}

	factory := gateseal.NewFactory(factoryAddr, n.Client)

	gs, receipt, err := factory.CreateGateSeal(ctx, sender, p)
	if err != nil {
		return nil, err
	}

	a.logger.Success("GateSeal deployed", "address", gs.Address())

	res := &DeployGateSealResult{
		Network:  n.NetworkName(),
		GateSeal: gs.Address(),
		Params:   p,
	}

	res.File, err = a.record(&artifacts.Record{
		Network:     res.Network,
		Kind:        artifacts.KindGateSeal,
		Address:     res.GateSeal,
		Deployer:    sender.Address(),
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		Timestamp:   head.Time,
		Factory:     &factoryAddr,
		Params:      &p,
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

type DeployGateSealResult struct {
	Network  string          `json:"network"`
	GateSeal common.Address  `json:"gate_seal"`
	Params   gateseal.Params `json:"params"`
	File     string          `json:"file"`
}

func (r *DeployGateSealResult) GetOutput() string {
	var b strings.Builder

	b.WriteString("[GATESEAL DEPLOYED]\n")
	fmt.Fprintf(&b, "Network   = %s\n", r.Network)
	fmt.Fprintf(&b, "GateSeal  = %s\n", r.GateSeal.Hex())
	fmt.Fprintf(&b, "Committee = %s\n", r.Params.SealingCommittee.Hex())
	fmt.Fprintf(&b, "Duration  = %ds\n", r.Params.SealDurationSeconds)
	fmt.Fprintf(&b, "Sealables = %v\n", r.Params.Sealables)
	fmt.Fprintf(&b, "Expiry    = %d\n", r.Params.ExpiryTimestamp)
	fmt.Fprintf(&b, "File      = %s", r.File)

	return b.String()
}
