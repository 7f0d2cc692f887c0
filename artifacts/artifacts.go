package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/renameio/v2"

	"github.com/Siasom1/gateseal-devnet/gateseal"
)

const (
	KindBlueprint = "blueprint"
	KindFactory   = "factory"
	KindGateSeal  = "gateseal"

	deployedDir = "deployed"
)

var ErrNoRecord = errors.New("no deployment record")

// Record describes one deployed contract.
type Record struct {
	Network     string           `json:"network"`
	Kind        string           `json:"type"`
	Address     common.Address   `json:"address"`
	Deployer    common.Address   `json:"deployer"`
	TxHash      common.Hash      `json:"tx_hash"`
	BlockNumber uint64           `json:"block_number"`
	Timestamp   uint64           `json:"timestamp"`
	Blueprint   *common.Address  `json:"blueprint,omitempty"`
	Factory     *common.Address  `json:"factory,omitempty"`
	Params      *gateseal.Params `json:"params,omitempty"`
}

// Path returns <root>/deployed/<network>/<kind>/<address>.json with the
// address in lower case.
func Path(root, network, kind string, address common.Address) string {
	return filepath.Join(root, deployedDir, network, kind, strings.ToLower(address.Hex())+".json")
}

// Save writes rec atomically and returns its path.
func Save(root string, rec *Record) (string, error) {
	if rec.Network == "" || rec.Kind == "" {
		return "", fmt.Errorf("record needs network and type")
	}

	path := Path(root, rec.Network, rec.Kind, rec.Address)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	if err := renameio.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", err
	}

	return path, nil
}

func Load(root, network, kind string, address common.Address) (*Record, error) {
	path := Path(root, network, kind, address)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoRecord, path)
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &rec, nil
}
