package gateseal

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genesisTime = uint64(1_700_000_000)

var (
	committee   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	blueprintAt = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	sealableA   = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	sealableB   = common.HexToAddress("0x0000000000000000000000000000000000000a02")
)

func validParams() Params {
	return Params{
		SealingCommittee:    committee,
		SealDurationSeconds: 7 * day,
		Sealables:           []common.Address{sealableA, sealableB},
		ExpiryTimestamp:     genesisTime + MaxExpiryPeriodSeconds,
	}
}

func TestParamsValidate(t *testing.T) {
	now := genesisTime

	p := validParams()
	require.NoError(t, p.Validate(now))

	p.SealDurationSeconds = MaxSealDurationSeconds
	assert.NoError(t, p.Validate(now))

	cases := []struct {
		name   string
		mutate func(p *Params)
		want   error
	}{
		{"zero committee", func(p *Params) { p.SealingCommittee = common.Address{} }, errZeroCommittee},
		{"zero duration", func(p *Params) { p.SealDurationSeconds = 0 }, errZeroDuration},
		{"duration above max", func(p *Params) { p.SealDurationSeconds = MaxSealDurationSeconds + 1 }, errDurationExceedsMax},
		{"no sealables", func(p *Params) { p.Sealables = nil }, errNoSealables},
		{"too many sealables", func(p *Params) {
			p.Sealables = nil
			for i := 1; i <= MaxSealables+1; i++ {
				p.Sealables = append(p.Sealables, common.BigToAddress(big.NewInt(int64(i))))
			}
		}, errTooManySealables},
		{"zero sealable", func(p *Params) { p.Sealables = append(p.Sealables, common.Address{}) }, errZeroSealable},
		{"duplicate sealable", func(p *Params) { p.Sealables = append(p.Sealables, sealableA) }, errDuplicateSealable},
		{"expiry now", func(p *Params) { p.ExpiryTimestamp = now }, errExpiryInPast},
		{"expiry too far", func(p *Params) { p.ExpiryTimestamp = now + MaxExpiryPeriodSeconds + 1 }, errExpiryTooFar},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := validParams()
			c.mutate(&p)
			assert.ErrorIs(t, p.Validate(now), c.want)
		})
	}
}

func TestCompare(t *testing.T) {
	recorded := validParams()
	assert.Empty(t, Compare(recorded, recorded))
	assert.NoError(t, MismatchError(nil))

	onChain := validParams()
	onChain.SealDurationSeconds++
	onChain.Sealables = onChain.Sealables[:1]

	mismatches := Compare(onChain, recorded)
	require.Len(t, mismatches, 2)
	assert.Equal(t, "seal_duration_seconds", mismatches[0].Field)
	assert.Equal(t, "sealables", mismatches[1].Field)

	err := MismatchError(mismatches)
	assert.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, err.Error(), "seal_duration_seconds: on chain 604801, recorded 604800")
}

func TestCreatedGateSealMissingEvent(t *testing.T) {
	f := NewFactory(blueprintAt, nil)

	_, err := f.CreatedGateSeal(&types.Receipt{Logs: []*types.Log{{Address: committee}}})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCheckABI(t *testing.T) {
	assert.NoError(t, CheckABI(FactoryABI, FactoryABI))
	assert.NoError(t, CheckABI(GateSealABI, GateSealABI))

	assert.ErrorIs(t, CheckABI(abi.ABI{}, SealableABI), ErrABIMismatch)

	drifted := mustParseABI(strings.Replace(FactoryABIJSON, `"_expiry_timestamp","type":"uint256"`, `"_expiry_period","type":"uint64"`, 1))
	err := CheckABI(drifted, FactoryABI)
	require.ErrorIs(t, err, ErrABIMismatch)
	assert.Contains(t, err.Error(), "create_gate_seal(address,uint256,address[],uint256)")

	noArgs := mustParseABI(strings.Replace(FactoryABIJSON, `{"name":"_blueprint","type":"address"}`, "", 1))
	err = CheckABI(noArgs, FactoryABI)
	require.ErrorIs(t, err, ErrABIMismatch)
	assert.Contains(t, err.Error(), "constructor(address)")
}
