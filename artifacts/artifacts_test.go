package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siasom1/gateseal-devnet/gateseal"
)

var gateSealAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func TestPath(t *testing.T) {
	got := Path("out", "goerli", KindGateSeal, gateSealAddr)
	assert.Equal(t, filepath.Join("out", "deployed", "goerli", "gateseal", "0x5fbdb2315678afecb367f032d93f642f64180aa3.json"), got)
}

func TestSaveLoad(t *testing.T) {
	root := t.TempDir()
	factory := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")

	rec := &Record{
		Network:     "devnet",
		Kind:        KindGateSeal,
		Address:     gateSealAddr,
		Deployer:    common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		BlockNumber: 3,
		Factory:     &factory,
		Params: &gateseal.Params{
			SealingCommittee:    common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
			SealDurationSeconds: 604800,
			Sealables:           []common.Address{common.HexToAddress("0x01")},
			ExpiryTimestamp:     1731536000,
		},
	}

	path, err := Save(root, rec)
	require.NoError(t, err)
	assert.Equal(t, Path(root, "devnet", KindGateSeal, gateSealAddr), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"seal_duration_seconds": 604800`)
	assert.Contains(t, string(raw), `"type": "gateseal"`)

	loaded, err := Load(root, "devnet", KindGateSeal, gateSealAddr)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)

	// overwriting replaces the whole file
	rec.BlockNumber = 4
	_, err = Save(root, rec)
	require.NoError(t, err)
	loaded, err = Load(root, "devnet", KindGateSeal, gateSealAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), loaded.BlockNumber)

	_, err = Load(root, "mainnet", KindGateSeal, gateSealAddr)
	assert.ErrorIs(t, err, ErrNoRecord)

	_, err = Save(root, &Record{Address: gateSealAddr})
	assert.Error(t, err)
}

func TestLoadContract(t *testing.T) {
	dir := t.TempDir()

	body := `{
  "contractName": "SealableMock",
  "abi": [{"type":"function","name":"isPaused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]}],
  "deploymentBytecode": {"bytecode": "0x600160005260206000f3"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SealableMock.json"), []byte(body), 0o600))

	c, err := LoadContract(dir, "SealableMock")
	require.NoError(t, err)
	assert.Equal(t, "SealableMock", c.Name)
	assert.Equal(t, common.FromHex("0x600160005260206000f3"), c.Bytecode)
	assert.Contains(t, c.ABI.Methods, "isPaused")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Empty.json"), []byte(`{"abi":[]}`), 0o600))
	_, err = LoadContract(dir, "Empty")
	assert.Error(t, err)

	_, err = LoadContract(dir, "Missing")
	assert.Error(t, err)
}
