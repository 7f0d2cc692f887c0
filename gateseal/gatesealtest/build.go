package gatesealtest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/Siasom1/gateseal-devnet/gateseal"
)

type contractType struct {
	ContractName       string          `json:"contractName"`
	ABI                json.RawMessage `json:"abi"`
	DeploymentBytecode struct {
		Bytecode hexutil.Bytes `json:"bytecode"`
	} `json:"deploymentBytecode"`
}

// WriteBuild writes compiled contract types for GateSeal, GateSealFactory and
// SealableMock to <root>/.build, carrying the stand-in bytecode of this chain.
func WriteBuild(t testing.TB, root string) {
	t.Helper()

	dir := filepath.Join(root, ".build")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	for name, c := range map[string]struct {
		abi      string
		bytecode []byte
	}{
		"GateSeal":        {gateseal.GateSealABIJSON, GateSealBytecode},
		"GateSealFactory": {gateseal.FactoryABIJSON, FactoryBytecode},
		"SealableMock":    {gateseal.SealableABIJSON, SealableBytecode},
	} {
		ct := contractType{ContractName: name, ABI: json.RawMessage(c.abi)}
		ct.DeploymentBytecode.Bytecode = c.bytecode

		data, err := json.Marshal(ct)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644))
	}
}
