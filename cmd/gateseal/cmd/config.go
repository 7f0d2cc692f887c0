package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Siasom1/gateseal-devnet/node"
	"github.com/Siasom1/gateseal-devnet/params"
)

func newConfigCmd(cfg *node.Config) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect the network configuration record",
	}

	c.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the selected network profile",
			Args:  cobra.NoArgs,
			RunE: runWith(cfg, func(_ context.Context, a *app, _ []string) (CommandResult, error) {
				name, nc, err := a.profile()
				if err != nil {
					return nil, err
				}
				return &NetworkResult{Name: name, Network: nc}, nil
			}),
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check every network profile and its hardfork rules",
			Args:  cobra.NoArgs,
			RunE: runWith(cfg, func(_ context.Context, a *app, _ []string) (CommandResult, error) {
				c, err := a.networks()
				if err != nil {
					return nil, err
				}

				res := &ValidateResult{}
				for _, name := range c.Names() {
					nc := c.Networks[name]

					chainCfg, err := nc.ChainConfig()
					if err != nil {
						return nil, err
					}

					res.Networks = append(res.Networks, ValidatedNetwork{
						Name:     name,
						Hardfork: nc.Hardfork,
						ChainID:  chainCfg.ChainID.Int64(),
						Accounts: nc.Accounts.Count,
						AutoMine: nc.AutoMining(),
					})
				}

				return res, nil
			}),
		},
	)

	return c
}

type NetworkResult struct {
	Name    string                `json:"name" yaml:"name"`
	Network *params.NetworkConfig `json:"network" yaml:"network"`
}

func (r *NetworkResult) GetOutput() string {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(map[string]interface{}{r.Name: r.Network}); err != nil {
		return err.Error()
	}

	return buf.String()
}

type ValidatedNetwork struct {
	Name     string `json:"name"`
	Hardfork string `json:"hardfork"`
	ChainID  int64  `json:"chain_id"`
	Accounts int    `json:"accounts"`
	AutoMine bool   `json:"automine"`
}

type ValidateResult struct {
	Networks []ValidatedNetwork `json:"networks"`
}

func (r *ValidateResult) GetOutput() string {
	var buf bytes.Buffer

	buf.WriteString("[NETWORKS]\n")
	for _, n := range r.Networks {
		fmt.Fprintf(&buf, "%s: hardfork=%s chain_id=%d accounts=%d automine=%t\n",
			n.Name, n.Hardfork, n.ChainID, n.Accounts, n.AutoMine)
	}
	buf.WriteString("valid")

	return buf.String()
}
