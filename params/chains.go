package params

import "fmt"

const (
	MainnetChainID = int64(1)
	GoerliChainID  = int64(5)
)

var liveNetworks = map[int64]string{
	MainnetChainID: "mainnet",
	GoerliChainID:  "goerli",
}

// IsLiveNetwork reports whether chainID belongs to a public network that
// holds real funds or is shared with other deployers.
func IsLiveNetwork(chainID int64) bool {
	_, ok := liveNetworks[chainID]
	return ok
}

// NetworkName returns the directory name used for artifacts deployed on chainID.
func NetworkName(chainID int64) string {
	if name, ok := liveNetworks[chainID]; ok {
		return name
	}
	if chainID == DefaultChainID {
		return DevnetName
	}
	return fmt.Sprintf("chain-%d", chainID)
}
