package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Siasom1/gateseal-devnet/node"
	"github.com/Siasom1/gateseal-devnet/registry"
)

func newDeploymentsCmd(cfg *node.Config) *cobra.Command {
	var kind string

	c := &cobra.Command{
		Use:   "deployments",
		Short: "Inspect recorded deployments",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List deployments, optionally of one --network and --type",
		Args:  cobra.NoArgs,
		RunE: runWith(cfg, func(_ context.Context, a *app, _ []string) (CommandResult, error) {
			reg, err := a.openRegistry()
			if err != nil {
				return nil, err
			}
			defer reg.Close()

			network := a.cfg.Network
			if network == "" && kind != "" {
				return nil, fmt.Errorf("--type needs --%s", networkFlag)
			}

			entries, err := reg.List(network, kind)
			if err != nil {
				return nil, err
			}

			return &DeploymentsResult{Entries: entries}, nil
		}),
	}

	list.Flags().StringVar(&kind, "type", "", "deployment type: blueprint, factory or gateseal")

	c.AddCommand(list)

	return c
}

type DeploymentsResult struct {
	Entries []*registry.Entry `json:"deployments"`
}

func (r *DeploymentsResult) GetOutput() string {
	if len(r.Entries) == 0 {
		return "No deployments found"
	}

	var b strings.Builder

	b.WriteString("[DEPLOYMENTS]\n")
	for i, e := range r.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%-8s %-9s %s block=%d %s", e.Network, e.Kind, e.Address.Hex(), e.BlockNumber, e.File)
	}

	return b.String()
}
