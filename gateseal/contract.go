package gateseal

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Siasom1/gateseal-devnet/deployer"
)

var ErrEventNotFound = errors.New("event not found in receipt")

// contract is an address plus the ABI used to talk to it.
type contract struct {
	address common.Address
	abi     abi.ABI
	backend deployer.Backend
}

func (c *contract) Address() common.Address {
	return c.address
}

func (c *contract) call(ctx context.Context, method string) ([]interface{}, error) {
	data, err := c.abi.Pack(method)
	if err != nil {
		return nil, err
	}

	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s: expected 1 return value, got %d", method, len(values))
	}

	return values, nil
}

func (c *contract) callAddress(ctx context.Context, method string) (common.Address, error) {
	values, err := c.call(ctx, method)
	if err != nil {
		return common.Address{}, err
	}

	return *abi.ConvertType(values[0], new(common.Address)).(*common.Address), nil
}

func (c *contract) callUint64(ctx context.Context, method string) (uint64, error) {
	values, err := c.call(ctx, method)
	if err != nil {
		return 0, err
	}

	n := *abi.ConvertType(values[0], new(*big.Int)).(**big.Int)
	if !n.IsUint64() {
		return 0, fmt.Errorf("%s: %s overflows uint64", method, n)
	}

	return n.Uint64(), nil
}

func (c *contract) callBool(ctx context.Context, method string) (bool, error) {
	values, err := c.call(ctx, method)
	if err != nil {
		return false, err
	}

	return *abi.ConvertType(values[0], new(bool)).(*bool), nil
}

func (c *contract) callAddresses(ctx context.Context, method string) ([]common.Address, error) {
	values, err := c.call(ctx, method)
	if err != nil {
		return nil, err
	}

	return *abi.ConvertType(values[0], new([]common.Address)).(*[]common.Address), nil
}

func (c *contract) transact(ctx context.Context, sender deployer.Sender, method string, args ...interface{}) (*types.Receipt, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	receipt, err := deployer.Transact(ctx, c.backend, sender, deployer.Message{To: &c.address, Data: data})
	if err != nil {
		return receipt, fmt.Errorf("%s: %w", method, err)
	}

	return receipt, nil
}

// events decodes every log of receipt emitted by this contract as name.
func (c *contract) events(receipt *types.Receipt, name string) ([]map[string]interface{}, error) {
	event, ok := c.abi.Events[name]
	if !ok {
		return nil, fmt.Errorf("unknown event %s", name)
	}

	var out []map[string]interface{}

	for _, l := range receipt.Logs {
		if l.Address != c.address || len(l.Topics) == 0 || l.Topics[0] != event.ID {
			continue
		}

		fields := make(map[string]interface{})
		if err := c.abi.UnpackIntoMap(fields, name, l.Data); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		out = append(out, fields)
	}

	return out, nil
}
