package gateseal

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-multierror"
)

const (
	day = 24 * 60 * 60

	MaxSealDurationSeconds = 14 * day
	MaxSealables           = 8
	MaxExpiryPeriodSeconds = 365 * day
)

var (
	errZeroCommittee      = errors.New("sealing committee: zero address")
	errZeroDuration       = errors.New("seal duration: zero")
	errDurationExceedsMax = errors.New("seal duration: exceeds max")
	errNoSealables        = errors.New("sealables: empty list")
	errTooManySealables   = errors.New("sealables: exceeds max length")
	errZeroSealable       = errors.New("sealables: includes zero address")
	errDuplicateSealable  = errors.New("sealables: includes duplicates")
	errExpiryInPast       = errors.New("expiry timestamp: must be in the future")
	errExpiryTooFar       = errors.New("expiry timestamp: exceeds max expiry period")
)

// Params are the constructor arguments of a GateSeal, as recorded in its
// deployment file.
type Params struct {
	SealingCommittee    common.Address   `json:"sealing_committee"`
	SealDurationSeconds uint64           `json:"seal_duration_seconds"`
	Sealables           []common.Address `json:"sealables"`
	ExpiryTimestamp     uint64           `json:"expiry_timestamp"`
}

// Validate applies the contract's constructor checks against block time now.
func (p *Params) Validate(now uint64) error {
	var result *multierror.Error

	if p.SealingCommittee == (common.Address{}) {
		result = multierror.Append(result, errZeroCommittee)
	}

	switch {
	case p.SealDurationSeconds == 0:
		result = multierror.Append(result, errZeroDuration)
	case p.SealDurationSeconds > MaxSealDurationSeconds:
		result = multierror.Append(result, errDurationExceedsMax)
	}

	switch {
	case len(p.Sealables) == 0:
		result = multierror.Append(result, errNoSealables)
	case len(p.Sealables) > MaxSealables:
		result = multierror.Append(result, errTooManySealables)
	}

	seen := make(map[common.Address]struct{}, len(p.Sealables))
	for _, s := range p.Sealables {
		if s == (common.Address{}) {
			result = multierror.Append(result, errZeroSealable)
			break
		}
		if _, dup := seen[s]; dup {
			result = multierror.Append(result, errDuplicateSealable)
			break
		}
		seen[s] = struct{}{}
	}

	switch {
	case p.ExpiryTimestamp <= now:
		result = multierror.Append(result, errExpiryInPast)
	case p.ExpiryTimestamp > now+MaxExpiryPeriodSeconds:
		result = multierror.Append(result, errExpiryTooFar)
	}

	return result.ErrorOrNil()
}

// Param names in deployment files, in the order they are checked.
var ParamFields = []string{
	"sealing_committee",
	"seal_duration_seconds",
	"sealables",
	"expiry_timestamp",
}

var ErrMismatch = errors.New("gate seal does not match its deployment record")

// Mismatch is one parameter that differs between chain and record.
type Mismatch struct {
	Field    string
	OnChain  string
	Recorded string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: on chain %s, recorded %s", m.Field, m.OnChain, m.Recorded)
}

// Compare lists every parameter of onChain that differs from recorded.
func Compare(onChain, recorded Params) []Mismatch {
	var out []Mismatch

	if onChain.SealingCommittee != recorded.SealingCommittee {
		out = append(out, Mismatch{"sealing_committee", onChain.SealingCommittee.Hex(), recorded.SealingCommittee.Hex()})
	}

	if onChain.SealDurationSeconds != recorded.SealDurationSeconds {
		out = append(out, Mismatch{"seal_duration_seconds", fmt.Sprint(onChain.SealDurationSeconds), fmt.Sprint(recorded.SealDurationSeconds)})
	}

	if !sameAddresses(onChain.Sealables, recorded.Sealables) {
		out = append(out, Mismatch{"sealables", fmt.Sprint(onChain.Sealables), fmt.Sprint(recorded.Sealables)})
	}

	if onChain.ExpiryTimestamp != recorded.ExpiryTimestamp {
		out = append(out, Mismatch{"expiry_timestamp", fmt.Sprint(onChain.ExpiryTimestamp), fmt.Sprint(recorded.ExpiryTimestamp)})
	}

	return out
}

// MismatchError folds mismatches into one error wrapping ErrMismatch.
func MismatchError(mismatches []Mismatch) error {
	if len(mismatches) == 0 {
		return nil
	}

	result := multierror.Append(nil, ErrMismatch)
	for _, m := range mismatches {
		result = multierror.Append(result, errors.New(m.String()))
	}

	return result
}

func sameAddresses(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
