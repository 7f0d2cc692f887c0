// Package deployertest provides an in-process EVM for tests of code that
// deploys and calls contracts.
package deployertest

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
)

// Well-known development keys, accounts 0 and 1 of the test mnemonic.
const (
	Key0 = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	Key1 = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
)

// Backend mines a block after every sent transaction.
type Backend struct {
	simulated.Client
	Sim *simulated.Backend
}

func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := b.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}

	b.Sim.Commit()

	return nil
}

// New starts a simulated chain funding Key0 and Key1 and returns it with both keys.
func New(t testing.TB) (*Backend, []*ecdsa.PrivateKey) {
	t.Helper()

	keys := []*ecdsa.PrivateKey{mustKey(t, Key0), mustKey(t, Key1)}

	balance := new(big.Int).Mul(big.NewInt(10_000), big.NewInt(1e18))
	alloc := types.GenesisAlloc{}
	for _, k := range keys {
		alloc[crypto.PubkeyToAddress(k.PublicKey)] = types.Account{Balance: balance}
	}

	sim := simulated.NewBackend(alloc)
	t.Cleanup(func() { _ = sim.Close() })

	return &Backend{Client: sim.Client(), Sim: sim}, keys
}

func Address(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

func mustKey(t testing.TB, hex string) *ecdsa.PrivateKey {
	t.Helper()

	key, err := crypto.HexToECDSA(hex)
	if err != nil {
		t.Fatal(err)
	}

	return key
}
