package gateseal_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siasom1/gateseal-devnet/deployer"
	"github.com/Siasom1/gateseal-devnet/devnet"
	"github.com/Siasom1/gateseal-devnet/gateseal"
	"github.com/Siasom1/gateseal-devnet/gateseal/gatesealtest"
)

var (
	committee   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	blueprintAt = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	sealableA   = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	sealableB   = common.HexToAddress("0x0000000000000000000000000000000000000a02")
)

func params() gateseal.Params {
	return gateseal.Params{
		SealingCommittee:    committee,
		SealDurationSeconds: 7 * 24 * 60 * 60,
		Sealables:           []common.Address{sealableA, sealableB},
		ExpiryTimestamp:     gatesealtest.GenesisTime + gateseal.MaxExpiryPeriodSeconds,
	}
}

func deployFactory(t *testing.T, chain *gatesealtest.Chain) (*gateseal.Factory, deployer.Sender) {
	t.Helper()

	sender := deployer.NewNodeSender(chain.RPC, gatesealtest.Account0)

	factory, receipt, err := gateseal.DeployFactory(context.Background(), chain.Client, sender, gatesealtest.FactoryBytecode, blueprintAt)
	require.NoError(t, err)
	assert.Equal(t, factory.Address(), receipt.ContractAddress)

	return factory, sender
}

func TestFactoryFlow(t *testing.T) {
	chain := gatesealtest.New(t)
	ctx := context.Background()

	_, _, err := gateseal.DeployFactory(ctx, chain.Client, deployer.NewNodeSender(chain.RPC, gatesealtest.Account0), gatesealtest.FactoryBytecode, common.Address{})
	assert.Error(t, err)

	factory, sender := deployFactory(t, chain)

	bp, err := factory.Blueprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, blueprintAt, bp)

	p := params()
	gs, _, err := factory.CreateGateSeal(ctx, sender, p)
	require.NoError(t, err)

	state, err := gs.State(ctx)
	require.NoError(t, err)
	assert.False(t, state.Expired)
	assert.Empty(t, gateseal.Compare(state.Params, p))

	paused, err := gateseal.NewSealable(sealableA, chain.Client).IsPaused(ctx)
	require.NoError(t, err)
	assert.False(t, paused)
}

func TestSimulation(t *testing.T) {
	chain := gatesealtest.New(t)
	ctx := context.Background()

	factory, sender := deployFactory(t, chain)

	gs, _, err := factory.CreateGateSeal(ctx, sender, params())
	require.NoError(t, err)

	// a stranger cannot seal
	_, err = gs.Seal(ctx, sender, []common.Address{sealableA})
	assert.ErrorIs(t, err, deployer.ErrTransactionFailed)

	sim := &gateseal.Simulation{
		Backend: chain.Client,
		RPC:     chain.RPC,
		Dev:     devnet.NewClient(chain.RPC, nil),
	}
	require.NoError(t, sim.Run(ctx, gs))

	assert.False(t, chain.Impersonated(committee), "impersonation is stopped")

	expired, err := gs.IsExpired(ctx)
	require.NoError(t, err)
	assert.True(t, expired)

	assert.ErrorIs(t, sim.Run(ctx, gs), gateseal.ErrAlreadyExpired)
}

func TestSealedEvents(t *testing.T) {
	chain := gatesealtest.New(t)
	ctx := context.Background()

	factory, sender := deployFactory(t, chain)

	gs, _, err := factory.CreateGateSeal(ctx, sender, params())
	require.NoError(t, err)

	chain.SetImpersonated(committee, true)

	receipt, err := gs.Seal(ctx, deployer.NewNodeSender(chain.RPC, committee), []common.Address{sealableB})
	require.NoError(t, err)

	events, err := gs.SealedEvents(receipt)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, committee, events[0].SealedBy)
	assert.Equal(t, sealableB, events[0].Sealable)
	assert.Equal(t, uint64(7*24*60*60), events[0].SealedFor.Uint64())
}
