package gateseal

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Siasom1/gateseal-devnet/deployer"
	"github.com/Siasom1/gateseal-devnet/devnet"
	"github.com/Siasom1/gateseal-devnet/log"
)

var (
	ErrAlreadyExpired = errors.New("gate seal already expired")
	ErrSimulation     = errors.New("gate seal simulation failed")
)

// Simulation runs the full seal flow of a GateSeal on a development runtime:
// the committee seals every sealable, the GateSeal expires, the sealables
// pause and then resume once the seal duration has passed.
type Simulation struct {
	Backend deployer.Backend
	RPC     deployer.Caller
	Dev     *devnet.Client
	Logger  *log.Logger
}

func (s *Simulation) Run(ctx context.Context, g *GateSeal) (err error) {
	logger := s.Logger
	if logger == nil {
		logger = log.Discard()
	}

	logger.Info("simulating GateSeal flow", "gate_seal", g.Address())

	state, err := g.State(ctx)
	if err != nil {
		return err
	}
	if state.Expired {
		return ErrAlreadyExpired
	}

	committee := state.SealingCommittee

	if err := s.Dev.Impersonate(ctx, committee); err != nil {
		return err
	}
	defer func() {
		if stopErr := s.Dev.StopImpersonating(ctx, committee); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	receipt, err := g.Seal(ctx, deployer.NewNodeSender(s.RPC, committee), state.Sealables)
	if err != nil {
		return err
	}

	block, err := s.Backend.HeaderByNumber(ctx, receipt.BlockNumber)
	if err != nil {
		return err
	}
	sealedAt := block.Time

	logger.Success("sealed", "block", receipt.BlockNumber, "timestamp", sealedAt)

	expired, err := g.IsExpired(ctx)
	if err != nil {
		return err
	}
	if !expired {
		return fmt.Errorf("%w: not expired after seal", ErrSimulation)
	}

	expiry, err := g.ExpiryTimestamp(ctx)
	if err != nil {
		return err
	}
	if expiry != sealedAt {
		return fmt.Errorf("%w: expiry timestamp %d, sealed at %d", ErrSimulation, expiry, sealedAt)
	}

	logger.Success("expired")

	if err := s.expectPaused(ctx, state.Sealables, true); err != nil {
		return err
	}

	logger.Success("sealables paused")

	if err := s.Dev.SetNextBlockTimestamp(ctx, sealedAt+state.SealDurationSeconds); err != nil {
		return err
	}
	if err := s.Dev.Mine(ctx); err != nil {
		return err
	}

	if err := s.expectPaused(ctx, state.Sealables, false); err != nil {
		return err
	}

	logger.Success("sealables unpaused", "after_seconds", state.SealDurationSeconds)
	logger.Success("GateSeal is good to go")

	return nil
}

func (s *Simulation) expectPaused(ctx context.Context, sealables []common.Address, want bool) error {
	for _, addr := range sealables {
		paused, err := NewSealable(addr, s.Backend).IsPaused(ctx)
		if err != nil {
			return err
		}
		if paused != want {
			return fmt.Errorf("%w: sealable %s paused=%t, want %t", ErrSimulation, addr.Hex(), paused, want)
		}
	}

	return nil
}
