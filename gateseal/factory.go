package gateseal

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Siasom1/gateseal-devnet/deployer"
)

// Factory is a deployed GateSealFactory.
type Factory struct {
	contract
}

func NewFactory(address common.Address, backend deployer.Backend) *Factory {
	return &Factory{contract{address: address, abi: FactoryABI, backend: backend}}
}

// DeployFactory deploys the factory bytecode pointing at blueprint and
// checks that the new factory reports the same blueprint.
func DeployFactory(ctx context.Context, backend deployer.Backend, sender deployer.Sender, bytecode []byte, blueprint common.Address) (*Factory, *types.Receipt, error) {
	if blueprint == (common.Address{}) {
		return nil, nil, fmt.Errorf("blueprint: zero address")
	}

	args, err := FactoryABI.Pack("", blueprint)
	if err != nil {
		return nil, nil, err
	}

	data := make([]byte, 0, len(bytecode)+len(args))
	data = append(append(data, bytecode...), args...)

	receipt, err := deployer.Transact(ctx, backend, sender, deployer.Message{Data: data})
	if err != nil {
		return nil, receipt, fmt.Errorf("deploy factory: %w", err)
	}

	f := NewFactory(receipt.ContractAddress, backend)

	got, err := f.Blueprint(ctx)
	if err != nil {
		return nil, receipt, err
	}
	if got != blueprint {
		return nil, receipt, fmt.Errorf("factory blueprint %s does not match %s", got.Hex(), blueprint.Hex())
	}

	return f, receipt, nil
}

func (f *Factory) Blueprint(ctx context.Context) (common.Address, error) {
	return f.callAddress(ctx, "get_blueprint")
}

// CreateGateSeal deploys a GateSeal from the factory's blueprint and returns
// it, read from the GateSealCreated event.
func (f *Factory) CreateGateSeal(ctx context.Context, sender deployer.Sender, p Params) (*GateSeal, *types.Receipt, error) {
	receipt, err := f.transact(ctx, sender, "create_gate_seal",
		p.SealingCommittee,
		new(big.Int).SetUint64(p.SealDurationSeconds),
		p.Sealables,
		new(big.Int).SetUint64(p.ExpiryTimestamp),
	)
	if err != nil {
		return nil, receipt, err
	}

	address, err := f.CreatedGateSeal(receipt)
	if err != nil {
		return nil, receipt, err
	}

	return NewGateSeal(address, f.backend), receipt, nil
}

// CreatedGateSeal extracts the new GateSeal address from a create_gate_seal receipt.
func (f *Factory) CreatedGateSeal(receipt *types.Receipt) (common.Address, error) {
	events, err := f.events(receipt, "GateSealCreated")
	if err != nil {
		return common.Address{}, err
	}
	if len(events) == 0 {
		return common.Address{}, fmt.Errorf("%w: GateSealCreated", ErrEventNotFound)
	}

	address, ok := events[0]["gate_seal"].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("GateSealCreated: unexpected gate_seal field %T", events[0]["gate_seal"])
	}

	return address, nil
}
