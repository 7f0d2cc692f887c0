// Package devnet drives the development-only RPC methods of a local runtime:
// manual mining, time travel and account impersonation.
package devnet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Siasom1/gateseal-devnet/deployer"
	"github.com/Siasom1/gateseal-devnet/log"
	"github.com/Siasom1/gateseal-devnet/node"
	"github.com/Siasom1/gateseal-devnet/params"
)

var ErrLiveNetwork = errors.New("development RPC refused on a live network")

type Client struct {
	rpc    deployer.Caller
	logger *log.Logger
}

// New returns a client for n, or ErrLiveNetwork when n serves a public chain.
func New(n *node.Node) (*Client, error) {
	if n.IsLive() {
		return nil, fmt.Errorf("%w: chain %s", ErrLiveNetwork, n.ChainID)
	}

	return NewClient(n.RPC, n.Logger), nil
}

func NewClient(rpc deployer.Caller, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}

	return &Client{rpc: rpc, logger: logger.Named("devnet")}
}

func (c *Client) call(ctx context.Context, method string, args ...interface{}) error {
	c.logger.Debug("dev rpc", "method", method, "args", args)

	if err := c.rpc.CallContext(ctx, nil, method, args...); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	return nil
}

// Mine produces one block with the pending transactions.
func (c *Client) Mine(ctx context.Context) error {
	return c.call(ctx, "evm_mine")
}

// SetNextBlockTimestamp fixes the timestamp of the next mined block.
func (c *Client) SetNextBlockTimestamp(ctx context.Context, timestamp uint64) error {
	return c.call(ctx, "evm_setNextBlockTimestamp", hexutil.Uint64(timestamp))
}

// IncreaseTime moves the runtime clock forward.
func (c *Client) IncreaseTime(ctx context.Context, seconds uint64) error {
	return c.call(ctx, "evm_increaseTime", hexutil.Uint64(seconds))
}

// Impersonate lets the runtime send transactions from address without its key.
func (c *Client) Impersonate(ctx context.Context, address common.Address) error {
	return c.call(ctx, "hardhat_impersonateAccount", address)
}

func (c *Client) StopImpersonating(ctx context.Context, address common.Address) error {
	return c.call(ctx, "hardhat_stopImpersonatingAccount", address)
}

// SetBalance overwrites the balance of address, in wei.
func (c *Client) SetBalance(ctx context.Context, address common.Address, wei *hexutil.Big) error {
	return c.call(ctx, "hardhat_setBalance", address, wei)
}

func (c *Client) SetAutomine(ctx context.Context, enabled bool) error {
	return c.call(ctx, "evm_setAutomine", enabled)
}

// SetIntervalMining mines a block every interval milliseconds; zero disables it.
func (c *Client) SetIntervalMining(ctx context.Context, interval int64) error {
	return c.call(ctx, "evm_setIntervalMining", interval)
}

// SetIntervalMiningRange mines at a random interval in [min, max] milliseconds.
func (c *Client) SetIntervalMiningRange(ctx context.Context, min, max int64) error {
	return c.call(ctx, "evm_setIntervalMining", []int64{min, max})
}

// ApplyMining pushes a mining sub-record to a running runtime. A nil record
// restores the defaults: automine on, interval mining off.
func (c *Client) ApplyMining(ctx context.Context, m *params.MiningConfig) error {
	if m == nil {
		if err := c.SetAutomine(ctx, true); err != nil {
			return err
		}
		return c.SetIntervalMining(ctx, 0)
	}

	if err := m.Validate(); err != nil {
		return err
	}

	auto := m.Auto == nil || *m.Auto
	if err := c.SetAutomine(ctx, auto); err != nil {
		return err
	}

	if len(m.IntervalRange) == 2 {
		if err := c.SetIntervalMiningRange(ctx, m.IntervalRange[0], m.IntervalRange[1]); err != nil {
			return err
		}
	} else if err := c.SetIntervalMining(ctx, m.Interval); err != nil {
		return err
	}

	if m.Mempool != nil {
		c.logger.Warn("mempool order only applies at runtime startup", "order", m.Mempool.Order)
	}

	c.logger.Success("mining applied", "auto", auto, "interval", m.Interval, "range", m.IntervalRange)

	return nil
}
