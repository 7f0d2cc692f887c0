package node

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siasom1/gateseal-devnet/rpc"
)

var devAccount = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func dialStub(t *testing.T, chainID uint64, network string) (*Node, *rpc.Server) {
	t.Helper()

	s := rpc.NewServer(nil)
	s.RegisterResult("eth_chainId", hexutil.Uint64(chainID))
	s.RegisterResult("eth_accounts", []common.Address{devAccount})

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	cfg := DefaultConfig()
	cfg.RPCURL = ts.URL
	cfg.Network = network

	n, err := Dial(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(n.Close)

	return n, s
}

func TestDialDevnet(t *testing.T) {
	n, s := dialStub(t, 31337, "")

	assert.Equal(t, int64(31337), n.ChainID.Int64())
	assert.False(t, n.IsLive())
	assert.Equal(t, "devnet", n.NetworkName())

	accounts, err := n.Accounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{devAccount}, accounts)

	assert.Equal(t, 1, s.CallCount("eth_chainId"))
}

func TestNetworkName(t *testing.T) {
	n, _ := dialStub(t, 1337, "local")
	assert.Equal(t, "local", n.NetworkName())

	live, _ := dialStub(t, 5, "local")
	assert.True(t, live.IsLive())
	assert.Equal(t, "goerli", live.NetworkName())
}

func TestDialFailure(t *testing.T) {
	s := rpc.NewServer(nil)
	ts := httptest.NewServer(s)
	defer ts.Close()

	cfg := DefaultConfig()
	cfg.RPCURL = ts.URL

	_, err := Dial(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestKeystoreAccount(t *testing.T) {
	dir := t.TempDir()

	priv, err := crypto.GenerateKey()
	require.NoError(t, err)

	key := &keystore.Key{
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}

	require.NoError(t, SaveKeystoreAccount(dir, "deployer", "secret", key, keystore.LightScryptN, keystore.LightScryptP))

	err = SaveKeystoreAccount(dir, "deployer", "other", key, keystore.LightScryptN, keystore.LightScryptP)
	assert.ErrorIs(t, err, os.ErrExist, "no overwrite")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "failed save leaves no temporary file")
	assert.Equal(t, "deployer.json", entries[0].Name())

	info, err := os.Stat(KeystorePath(dir, "deployer"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadKeystoreAccount(dir, "deployer", "secret")
	require.NoError(t, err)
	assert.Equal(t, key.Address, loaded.Address)
	assert.Equal(t, crypto.FromECDSA(priv), crypto.FromECDSA(loaded.PrivateKey))

	_, err = LoadKeystoreAccount(dir, "deployer", "wrong")
	assert.ErrorIs(t, err, keystore.ErrDecrypt)

	_, err = LoadKeystoreAccount(dir, "nobody", "secret")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
