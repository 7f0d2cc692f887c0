package params

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	errNoNetworks         = errors.New("no networks defined")
	errMissingAccounts    = errors.New("accounts: missing")
	errNegativeBaseFee    = errors.New("initialBaseFeePerGas: must not be negative")
	errBaseFeeUnsupported = errors.New("initialBaseFeePerGas: only valid for hardforks with EIP-1559 (london and later)")
	errInvalidChainID     = fmt.Errorf("chainId: must not be negative (0 selects %d)", DefaultChainID)
	errMnemonicWordCount  = errors.New("accounts.mnemonic: word count must be 12, 15, 18, 21 or 24")
	errAccountCount       = fmt.Errorf("accounts.count: must be between 1 and %d", MaxAccounts)
	errInitialIndex       = errors.New("accounts.initialIndex: must not be negative")
	errNegativeInterval   = errors.New("mining.interval: must not be negative")
	errIntervalRange      = errors.New("mining.intervalRange: must be [min, max] with 0 <= min <= max")
	errMempoolOrder       = errors.New("mining.mempool.order: must be priority or fifo")
)

// Validate checks every network profile and reports all problems at once.
func (c *Config) Validate() error {
	if len(c.Networks) == 0 {
		return errNoNetworks
	}

	var result *multierror.Error

	if c.DefaultNetwork != "" {
		if _, ok := c.Networks[c.DefaultNetwork]; !ok {
			result = multierror.Append(result, fmt.Errorf("defaultNetwork: %w: %q", ErrUnknownNetwork, c.DefaultNetwork))
		}
	}

	for _, name := range c.Names() {
		nc := c.Networks[name]
		if nc == nil {
			result = multierror.Append(result, fmt.Errorf("%s: empty network", name))
			continue
		}

		if err := nc.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", name, err))
		}
	}

	return result.ErrorOrNil()
}

// Validate checks the profile against the invariants the runtime enforces.
func (n *NetworkConfig) Validate() error {
	var result *multierror.Error

	appendErr := func(err error) {
		result = multierror.Append(result, err)
	}

	if _, err := HardforkOrder(n.Hardfork); err != nil {
		appendErr(fmt.Errorf("hardfork: %w", err))
	}

	if fee, ok := n.BaseFee(); ok {
		if fee < 0 {
			appendErr(errNegativeBaseFee)
		}
		if !SupportsBaseFee(n.Hardfork) {
			appendErr(errBaseFeeUnsupported)
		}
	}

	if n.ChainID < 0 {
		appendErr(errInvalidChainID)
	}

	if n.Accounts == nil {
		appendErr(errMissingAccounts)
	} else if err := n.Accounts.Validate(); err != nil {
		appendErr(err)
	}

	if n.Mining != nil {
		if err := n.Mining.Validate(); err != nil {
			appendErr(err)
		}
	}

	return result.ErrorOrNil()
}

func (a *HDAccountsConfig) Validate() error {
	var result *multierror.Error

	switch len(a.Words()) {
	case 12, 15, 18, 21, 24:
	default:
		result = multierror.Append(result, errMnemonicWordCount)
	}

	if _, err := a.BasePath(); err != nil {
		result = multierror.Append(result, fmt.Errorf("accounts.path: %w", err))
	}

	if a.Count < 1 || a.Count > MaxAccounts {
		result = multierror.Append(result, errAccountCount)
	}

	if a.InitialIndex < 0 {
		result = multierror.Append(result, errInitialIndex)
	}

	if _, err := a.Balance(); err != nil {
		result = multierror.Append(result, fmt.Errorf("accounts.accountsBalance: %w", err))
	}

	return result.ErrorOrNil()
}

func (m *MiningConfig) Validate() error {
	var result *multierror.Error

	if m.Interval < 0 {
		result = multierror.Append(result, errNegativeInterval)
	}

	if m.IntervalRange != nil {
		r := m.IntervalRange
		if len(r) != 2 || r[0] < 0 || r[0] > r[1] {
			result = multierror.Append(result, errIntervalRange)
		}
	}

	if m.Mempool != nil {
		switch m.Mempool.Order {
		case MempoolOrderPriority, MempoolOrderFIFO:
		default:
			result = multierror.Append(result, errMempoolOrder)
		}
	}

	return result.ErrorOrNil()
}
