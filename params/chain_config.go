package params

import (
	"errors"
	"fmt"
	"math/big"

	gethparams "github.com/ethereum/go-ethereum/params"
)

var ErrUnknownHardfork = errors.New("unknown hardfork")

// Hardforks lists the rule sets the runtime recognizes, oldest first.
var Hardforks = []string{
	"chainstart",
	"homestead",
	"dao",
	"tangerineWhistle",
	"spuriousDragon",
	"byzantium",
	"constantinople",
	"petersburg",
	"istanbul",
	"muirGlacier",
	"berlin",
	"london",
	"arrowGlacier",
	"grayGlacier",
	"merge",
	"shanghai",
	"cancun",
	"prague",
}

var hardforkIndex = func() map[string]int {
	idx := make(map[string]int, len(Hardforks))
	for i, name := range Hardforks {
		idx[name] = i
	}
	return idx
}()

// HardforkOrder returns the position of a hardfork in activation order.
func HardforkOrder(name string) (int, error) {
	i, ok := hardforkIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownHardfork, name)
	}
	return i, nil
}

// HardforkAtLeast reports whether name activates at or after min.
func HardforkAtLeast(name, min string) bool {
	a, err := HardforkOrder(name)
	if err != nil {
		return false
	}
	b, err := HardforkOrder(min)
	if err != nil {
		return false
	}
	return a >= b
}

// SupportsBaseFee reports whether the hardfork has an EIP-1559 fee market.
func SupportsBaseFee(hardfork string) bool {
	return HardforkAtLeast(hardfork, "london")
}

// ChainConfig returns the go-ethereum rule set for this profile, with every
// fork up to and including the configured hardfork active at genesis.
func (n *NetworkConfig) ChainConfig() (*gethparams.ChainConfig, error) {
	return HardforkChainConfig(n.Hardfork, n.ChainID)
}

func HardforkChainConfig(hardfork string, chainID int64) (*gethparams.ChainConfig, error) {
	order, err := HardforkOrder(hardfork)
	if err != nil {
		return nil, err
	}
	if chainID <= 0 {
		chainID = DefaultChainID
	}

	cfg := &gethparams.ChainConfig{ChainID: big.NewInt(chainID)}
	zero := uint64(0)

	at := func(name string) bool { return order >= hardforkIndex[name] }
	block := func(name string) *big.Int {
		if at(name) {
			return big.NewInt(0)
		}
		return nil
	}
	timestamp := func(name string) *uint64 {
		if at(name) {
			return &zero
		}
		return nil
	}

	cfg.HomesteadBlock = block("homestead")
	cfg.DAOForkBlock = block("dao")
	cfg.DAOForkSupport = at("dao")
	cfg.EIP150Block = block("tangerineWhistle")
	cfg.EIP155Block = block("spuriousDragon")
	cfg.EIP158Block = block("spuriousDragon")
	cfg.ByzantiumBlock = block("byzantium")
	cfg.ConstantinopleBlock = block("constantinople")
	cfg.PetersburgBlock = block("petersburg")
	cfg.IstanbulBlock = block("istanbul")
	cfg.MuirGlacierBlock = block("muirGlacier")
	cfg.BerlinBlock = block("berlin")
	cfg.LondonBlock = block("london")
	cfg.ArrowGlacierBlock = block("arrowGlacier")
	cfg.GrayGlacierBlock = block("grayGlacier")

	if at("merge") {
		cfg.TerminalTotalDifficulty = big.NewInt(0)
		cfg.MergeNetsplitBlock = big.NewInt(0)
	}

	cfg.ShanghaiTime = timestamp("shanghai")
	cfg.CancunTime = timestamp("cancun")
	cfg.PragueTime = timestamp("prague")

	if at("cancun") {
		cfg.BlobScheduleConfig = &gethparams.BlobScheduleConfig{
			Cancun: gethparams.DefaultCancunBlobConfig,
		}
		if at("prague") {
			cfg.BlobScheduleConfig.Prague = gethparams.DefaultPragueBlobConfig
		}
	}

	return cfg, nil
}
