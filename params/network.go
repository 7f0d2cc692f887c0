package params

import (
	"errors"
	"fmt"
	"sort"
)

// DevnetName is the profile name of the built-in in-process simulated network.
const DevnetName = "devnet"

var ErrUnknownNetwork = errors.New("unknown network")

// Config is the top-level network configuration document.
type Config struct {
	DefaultNetwork string                    `json:"defaultNetwork,omitempty" yaml:"defaultNetwork,omitempty" hcl:"defaultNetwork"`
	Networks       map[string]*NetworkConfig `json:"networks" yaml:"networks" hcl:"networks"`
}

// NetworkConfig describes one network profile handed to the runtime at startup.
type NetworkConfig struct {
	Hardfork string `json:"hardfork" yaml:"hardfork" hcl:"hardfork"`

	// InitialBaseFeePerGas is nil when the runtime default applies. Zero is
	// a deliberate override that allows transactions with a zero gas price.
	InitialBaseFeePerGas *int64 `json:"initialBaseFeePerGas,omitempty" yaml:"initialBaseFeePerGas,omitempty" hcl:"initialBaseFeePerGas"`

	// ChainID zero, which is what an omitted key decodes to, selects
	// DefaultChainID.
	ChainID int64 `json:"chainId,omitempty" yaml:"chainId,omitempty" hcl:"chainId"`

	Accounts *HDAccountsConfig `json:"accounts" yaml:"accounts" hcl:"accounts"`
	Mining   *MiningConfig     `json:"mining,omitempty" yaml:"mining,omitempty" hcl:"mining"`
}

// MiningConfig switches the runtime from automatic to manual block production.
type MiningConfig struct {
	Auto          *bool          `json:"auto,omitempty" yaml:"auto,omitempty" hcl:"auto"`
	Interval      int64          `json:"interval,omitempty" yaml:"interval,omitempty" hcl:"interval"`
	IntervalRange []int64        `json:"intervalRange,omitempty" yaml:"intervalRange,omitempty" hcl:"intervalRange"`
	Mempool       *MempoolConfig `json:"mempool,omitempty" yaml:"mempool,omitempty" hcl:"mempool"`
}

type MempoolConfig struct {
	Order string `json:"order" yaml:"order" hcl:"order"`
}

const (
	DefaultHardfork = "london"
	DefaultChainID  = int64(31337)

	MempoolOrderPriority = "priority"
	MempoolOrderFIFO     = "fifo"
)

// DefaultConfig returns the configuration of the built-in devnet: london
// rules, a zero initial base fee and ten accounts derived from the well-known
// test mnemonic. Manual mining is left disabled.
func DefaultConfig() *Config {
	baseFee := int64(0)

	return &Config{
		DefaultNetwork: DevnetName,
		Networks: map[string]*NetworkConfig{
			DevnetName: {
				Hardfork:             DefaultHardfork,
				InitialBaseFeePerGas: &baseFee,
				ChainID:              DefaultChainID,
				Accounts:             DefaultHDAccounts(),
			},
		},
	}
}

// Network returns the named profile, or the default one when name is empty.
func (c *Config) Network(name string) (*NetworkConfig, error) {
	if name == "" {
		name = c.DefaultNetwork
	}
	if name == "" && len(c.Networks) == 1 {
		for only := range c.Networks {
			name = only
		}
	}

	nc, ok := c.Networks[name]
	if !ok || nc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
	}

	return nc, nil
}

// Names returns the profile names in lexical order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// AutoMining reports whether the runtime mines a block per transaction.
func (n *NetworkConfig) AutoMining() bool {
	if n.Mining == nil || n.Mining.Auto == nil {
		return true
	}

	return *n.Mining.Auto
}

// BaseFee returns the configured initial base fee and whether it was set.
func (n *NetworkConfig) BaseFee() (int64, bool) {
	if n.InitialBaseFeePerGas == nil {
		return 0, false
	}

	return *n.InitialBaseFeePerGas, true
}
