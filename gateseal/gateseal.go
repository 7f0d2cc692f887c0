package gateseal

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Siasom1/gateseal-devnet/deployer"
)

// GateSeal is a deployed GateSeal instance.
type GateSeal struct {
	contract
}

func NewGateSeal(address common.Address, backend deployer.Backend) *GateSeal {
	return &GateSeal{contract{address: address, abi: GateSealABI, backend: backend}}
}

// State is what a GateSeal reports about itself.
type State struct {
	Params
	Expired bool `json:"expired"`
}

func (g *GateSeal) State(ctx context.Context) (*State, error) {
	var (
		s   State
		err error
	)

	if s.SealingCommittee, err = g.callAddress(ctx, "get_sealing_committee"); err != nil {
		return nil, err
	}
	if s.SealDurationSeconds, err = g.callUint64(ctx, "get_seal_duration_seconds"); err != nil {
		return nil, err
	}
	if s.Sealables, err = g.callAddresses(ctx, "get_sealables"); err != nil {
		return nil, err
	}
	if s.ExpiryTimestamp, err = g.callUint64(ctx, "get_expiry_timestamp"); err != nil {
		return nil, err
	}
	if s.Expired, err = g.IsExpired(ctx); err != nil {
		return nil, err
	}

	return &s, nil
}

func (g *GateSeal) IsExpired(ctx context.Context) (bool, error) {
	return g.callBool(ctx, "is_expired")
}

func (g *GateSeal) ExpiryTimestamp(ctx context.Context) (uint64, error) {
	return g.callUint64(ctx, "get_expiry_timestamp")
}

// Seal pauses the given sealables. Only the sealing committee may call it,
// and only once: sealing expires the GateSeal.
func (g *GateSeal) Seal(ctx context.Context, sender deployer.Sender, sealables []common.Address) (*types.Receipt, error) {
	return g.transact(ctx, sender, "seal", sealables)
}

// SealedEvent is one Sealed log, emitted per sealable.
type SealedEvent struct {
	SealedBy  common.Address
	SealedFor *big.Int
	Sealable  common.Address
	SealedAt  *big.Int
}

// SealedEvents decodes the Sealed logs of a seal receipt.
func (g *GateSeal) SealedEvents(receipt *types.Receipt) ([]SealedEvent, error) {
	events, err := g.events(receipt, "Sealed")
	if err != nil {
		return nil, err
	}

	out := make([]SealedEvent, 0, len(events))
	for _, e := range events {
		sealedBy, _ := e["sealed_by"].(common.Address)
		sealable, _ := e["sealable"].(common.Address)
		sealedFor, _ := e["sealed_for"].(*big.Int)
		sealedAt, _ := e["sealed_at"].(*big.Int)

		out = append(out, SealedEvent{
			SealedBy:  sealedBy,
			SealedFor: sealedFor,
			Sealable:  sealable,
			SealedAt:  sealedAt,
		})
	}

	return out, nil
}

// Sealable is a contract a GateSeal can pause.
type Sealable struct {
	contract
}

func NewSealable(address common.Address, backend deployer.Backend) *Sealable {
	return &Sealable{contract{address: address, abi: SealableABI, backend: backend}}
}

func (s *Sealable) IsPaused(ctx context.Context) (bool, error) {
	return s.callBool(ctx, "isPaused")
}
