package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Siasom1/gateseal-devnet/devnet"
	"github.com/Siasom1/gateseal-devnet/node"
	"github.com/Siasom1/gateseal-devnet/params"
)

func newMiningCmd(cfg *node.Config) *cobra.Command {
	c := &cobra.Command{
		Use:   "mining",
		Short: "Control block production of a development runtime",
	}

	c.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Push the profile's mining settings to the running runtime",
		Args:  cobra.NoArgs,
		RunE: runWith(cfg, func(ctx context.Context, a *app, _ []string) (CommandResult, error) {
			name, nc, err := a.profile()
			if err != nil {
				return nil, err
			}

			n, err := a.dial(ctx)
			if err != nil {
				return nil, err
			}
			defer n.Close()

			dev, err := devnet.New(n)
			if err != nil {
				return nil, err
			}

			if err := dev.ApplyMining(ctx, nc.Mining); err != nil {
				return nil, err
			}

			return &MiningResult{Network: name, Mining: nc.Mining}, nil
		}),
	})

	c.AddCommand(&cobra.Command{
		Use:   "mine",
		Short: "Mine one block",
		Args:  cobra.NoArgs,
		RunE: runWith(cfg, func(ctx context.Context, a *app, _ []string) (CommandResult, error) {
			n, err := a.dial(ctx)
			if err != nil {
				return nil, err
			}
			defer n.Close()

			dev, err := devnet.New(n)
			if err != nil {
				return nil, err
			}

			if err := dev.Mine(ctx); err != nil {
				return nil, err
			}

			number, err := n.Client.BlockNumber(ctx)
			if err != nil {
				return nil, err
			}

			return &MinedResult{Block: number}, nil
		}),
	})

	return c
}

type MiningResult struct {
	Network string               `json:"network"`
	Mining  *params.MiningConfig `json:"mining"`
}

func (r *MiningResult) GetOutput() string {
	if r.Mining == nil {
		return fmt.Sprintf("%s: automine on, interval mining off", r.Network)
	}

	auto := r.Mining.Auto == nil || *r.Mining.Auto
	if len(r.Mining.IntervalRange) == 2 {
		return fmt.Sprintf("%s: automine=%t interval=%d-%dms", r.Network, auto, r.Mining.IntervalRange[0], r.Mining.IntervalRange[1])
	}

	return fmt.Sprintf("%s: automine=%t interval=%dms", r.Network, auto, r.Mining.Interval)
}

type MinedResult struct {
	Block uint64 `json:"block"`
}

func (r *MinedResult) GetOutput() string {
	return fmt.Sprintf("mined block #%d", r.Block)
}
