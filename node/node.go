package node

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Siasom1/gateseal-devnet/log"
	"github.com/Siasom1/gateseal-devnet/params"
)

// Node is a connection to a running runtime.
type Node struct {
	Config  *Config
	Logger  *log.Logger
	RPC     *rpc.Client
	Client  *ethclient.Client
	ChainID *big.Int
}

// Dial connects to cfg.RPCURL and reads the chain id.
func Dial(ctx context.Context, cfg *Config, logger *log.Logger) (*Node, error) {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.Named("node")

	c, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}

	client := ethclient.NewClient(c)

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("read chain id: %w", err)
	}

	n := &Node{
		Config:  cfg,
		Logger:  logger,
		RPC:     c,
		Client:  client,
		ChainID: chainID,
	}

	logger.Info("connected", "url", cfg.RPCURL, "chain_id", chainID, "network", n.NetworkName(), "live", n.IsLive())

	return n, nil
}

// IsLive reports whether the node serves a public network.
func (n *Node) IsLive() bool {
	return params.IsLiveNetwork(n.ChainID.Int64())
}

// NetworkName names the network for deployment files. An explicitly
// configured profile name wins on development chains.
func (n *Node) NetworkName() string {
	if !n.IsLive() && n.Config.Network != "" {
		return n.Config.Network
	}

	return params.NetworkName(n.ChainID.Int64())
}

// Accounts returns the accounts the runtime holds unlocked.
func (n *Node) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := n.RPC.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}

	return accounts, nil
}

func (n *Node) Close() {
	n.Client.Close()
}
