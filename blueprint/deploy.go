package blueprint

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Siasom1/gateseal-devnet/deployer"
)

type CodeReader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// Deploy sends initcode from sender, checks the code stored on chain and
// returns the blueprint address with the deployment receipt.
func Deploy(ctx context.Context, backend deployer.Backend, sender deployer.Sender, initcode []byte) (common.Address, *types.Receipt, error) {
	want, err := VerifyDeployPreamble(initcode)
	if err != nil {
		return common.Address{}, nil, err
	}

	receipt, err := deployer.Transact(ctx, backend, sender, deployer.Message{Data: initcode})
	if err != nil {
		return common.Address{}, receipt, fmt.Errorf("deploy blueprint: %w", err)
	}

	code, err := VerifyAt(ctx, backend, receipt.ContractAddress)
	if err != nil {
		return common.Address{}, receipt, err
	}

	if !bytes.Equal(code, want) {
		return common.Address{}, receipt, fmt.Errorf("%w: deployed code differs from initcode", ErrNotBlueprint)
	}

	return receipt.ContractAddress, receipt, nil
}

// VerifyAt checks that address holds a version 0 blueprint and returns its code.
func VerifyAt(ctx context.Context, reader CodeReader, address common.Address) ([]byte, error) {
	code, err := reader.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, err
	}

	if len(code) == 0 {
		return nil, fmt.Errorf("%w: no code at %s", ErrNotBlueprint, address.Hex())
	}

	if err := Verify(code); err != nil {
		return nil, fmt.Errorf("%s: %w", address.Hex(), err)
	}

	return code, nil
}
