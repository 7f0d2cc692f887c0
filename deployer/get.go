package deployer

import (
	"context"

	"github.com/Siasom1/gateseal-devnet/env"
	"github.com/Siasom1/gateseal-devnet/node"
)

const (
	deployerVariable   = "DEPLOYER"
	passphraseVariable = "DEPLOYER_PASSPHRASE"
)

// Get picks the deploying account: the runtime's first unlocked account on
// development networks, the keystore account named by DEPLOYER on live ones.
func Get(ctx context.Context, n *node.Node, loader *env.Loader) (Sender, error) {
	n.Logger.Info("loading deployer")

	if !n.IsLive() {
		accounts, err := n.Accounts(ctx)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, ErrNoAccounts
		}

		n.Logger.Success("deployer", "address", accounts[0], "source", "node")

		return NewNodeSender(n.RPC, accounts[0]), nil
	}

	alias, err := loader.Require(deployerVariable)
	if err != nil {
		return nil, err
	}

	key, err := node.LoadKeystoreAccount(n.Config.KeystoreDir, alias, loader.Secret(passphraseVariable))
	if err != nil {
		return nil, err
	}

	n.Logger.Success("deployer", "address", key.Address, "source", "keystore", "alias", alias)

	return NewKeySender(n.Client, key.PrivateKey), nil
}
