package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Contract is a compiled contract type.
type Contract struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

type contractTypeJSON struct {
	ContractName       string          `json:"contractName"`
	ABI                json.RawMessage `json:"abi"`
	DeploymentBytecode struct {
		Bytecode hexutil.Bytes `json:"bytecode"`
	} `json:"deploymentBytecode"`
}

// LoadContract reads <dir>/<name>.json as produced by the contract compiler.
func LoadContract(dir, name string) (*Contract, error) {
	path := filepath.Join(dir, name+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ct contractTypeJSON
	if err := json.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if len(ct.DeploymentBytecode.Bytecode) == 0 {
		return nil, fmt.Errorf("%s: no deployment bytecode", path)
	}

	c := &Contract{Name: ct.ContractName, Bytecode: ct.DeploymentBytecode.Bytecode}
	if c.Name == "" {
		c.Name = name
	}

	if len(ct.ABI) > 0 {
		if err := json.Unmarshal(ct.ABI, &c.ABI); err != nil {
			return nil, fmt.Errorf("%s: abi: %w", path, err)
		}
	}

	return c, nil
}
