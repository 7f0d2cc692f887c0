package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Siasom1/gateseal-devnet/artifacts"
	"github.com/Siasom1/gateseal-devnet/deployer"
	"github.com/Siasom1/gateseal-devnet/devnet"
	"github.com/Siasom1/gateseal-devnet/gateseal"
	"github.com/Siasom1/gateseal-devnet/node"
)

const simulateFlag = "simulate"

func newCheckGateSealCmd(cfg *node.Config) *cobra.Command {
	var simulate bool

	c := &cobra.Command{
		Use:   "check-gate-seal",
		Short: "Compare the GateSeal at GATE_SEAL with its deployment record",
		Args:  cobra.NoArgs,
		RunE: runWith(cfg, func(ctx context.Context, a *app, _ []string) (CommandResult, error) {
			return checkGateSeal(ctx, a, simulate)
		}),
	}

	c.Flags().BoolVar(&simulate, simulateFlag, false, "seal as the committee and wait out the seal duration (development networks only)")

	return c
}

func checkGateSeal(ctx context.Context, a *app, simulate bool) (CommandResult, error) {
	address, err := a.env.Address("GATE_SEAL")
	if err != nil {
		return nil, err
	}

	n, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer n.Close()

	rec, err := artifacts.Load(a.cfg.ArtifactsDir, n.NetworkName(), artifacts.KindGateSeal, address)
	if err != nil {
		return nil, err
	}
	if rec.Params == nil {
		return nil, fmt.Errorf("%s: record has no params", artifacts.Path(a.cfg.ArtifactsDir, n.NetworkName(), artifacts.KindGateSeal, address))
	}

	gs := gateseal.NewGateSeal(address, n.Client)

	state, err := gs.State(ctx)
	if err != nil {
		return nil, err
	}

	mismatches := gateseal.Compare(state.Params, *rec.Params)

	res := &CheckResult{GateSeal: address, Matched: matchedFields(mismatches)}
	for _, f := range res.Matched {
		a.logger.Success(f + " matches")
	}

	if err := gateseal.MismatchError(mismatches); err != nil {
		return nil, err
	}

	if simulate {
		if err := simulateSeal(ctx, a, n, gs); err != nil {
			return nil, err
		}
		res.Simulated = true
	}

	return res, nil
}

func matchedFields(mismatches []gateseal.Mismatch) []string {
	bad := make(map[string]bool, len(mismatches))
	for _, m := range mismatches {
		bad[m.Field] = true
	}

	var out []string
	for _, f := range gateseal.ParamFields {
		if !bad[f] {
			out = append(out, f)
		}
	}

	return out
}

func simulateSeal(ctx context.Context, a *app, n *node.Node, gs *gateseal.GateSeal) error {
	dev, err := devnet.New(n)
	if err != nil {
		return err
	}

	sim := &gateseal.Simulation{
		Backend: n.Client,
		RPC:     n.RPC,
		Dev:     dev,
		Logger:  a.logger,
	}

	return sim.Run(ctx, gs)
}

type CheckResult struct {
	GateSeal  common.Address `json:"gate_seal"`
	Matched   []string       `json:"matched"`
	Simulated bool           `json:"simulated"`
}

func (r *CheckResult) GetOutput() string {
	var b strings.Builder

	b.WriteString("[GATESEAL CHECK]\n")
	fmt.Fprintf(&b, "GateSeal  = %s\n", r.GateSeal.Hex())
	fmt.Fprintf(&b, "Matched   = %s\n", strings.Join(r.Matched, ", "))
	fmt.Fprintf(&b, "Simulated = %t", r.Simulated)

	return b.String()
}

func newCheckFactoryCmd(cfg *node.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check-factory",
		Short: "Create a throwaway GateSeal from FACTORY and run the seal flow (development networks only)",
		Args:  cobra.NoArgs,
		RunE:  runWith(cfg, checkFactory),
	}
}

func checkFactory(ctx context.Context, a *app, _ []string) (CommandResult, error) {
	factoryAddr, err := a.env.Address("FACTORY")
	if err != nil {
		return nil, err
	}

	n, err := a.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer n.Close()

	if _, err := devnet.New(n); err != nil {
		return nil, err
	}

	sender, err := deployer.Get(ctx, n, a.env)
	if err != nil {
		return nil, err
	}

	mock, err := a.contract(sealableContract, gateseal.SealableABI)
	if err != nil {
		return nil, err
	}

	receipt, err := deployer.Transact(ctx, n.Client, sender, deployer.Message{Data: mock.Bytecode})
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", sealableContract, err)
	}

	head, err := n.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, err
	}

	p := gateseal.Params{
		SealingCommittee:    sender.Address(),
		SealDurationSeconds: 7 * 24 * 60 * 60,
		Sealables:           []common.Address{receipt.ContractAddress},
		ExpiryTimestamp:     head.Time + gateseal.MaxExpiryPeriodSeconds,
	}

	gs, _, err := gateseal.NewFactory(factoryAddr, n.Client).CreateGateSeal(ctx, sender, p)
	if err != nil {
		return nil, err
	}

	state, err := gs.State(ctx)
	if err != nil {
		return nil, err
	}
	if err := gateseal.MismatchError(gateseal.Compare(state.Params, p)); err != nil {
		return nil, err
	}

	a.logger.Success("factory created a matching GateSeal", "gate_seal", gs.Address())

	if err := simulateSeal(ctx, a, n, gs); err != nil {
		return nil, err
	}

	return &CheckResult{GateSeal: gs.Address(), Matched: gateseal.ParamFields, Simulated: true}, nil
}
