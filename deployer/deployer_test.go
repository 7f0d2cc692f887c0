package deployer

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siasom1/gateseal-devnet/deployer/deployertest"
	"github.com/Siasom1/gateseal-devnet/env"
	"github.com/Siasom1/gateseal-devnet/node"
	"github.com/Siasom1/gateseal-devnet/rpc"
)

func TestKeySenderTransfer(t *testing.T) {
	backend, keys := deployertest.New(t)
	ctx := context.Background()

	sender := NewKeySender(backend, keys[0])
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), sender.Address())

	to := deployertest.Address(keys[1])
	before, err := backend.BalanceAt(ctx, to, nil)
	require.NoError(t, err)

	receipt, err := Transact(ctx, backend, sender, Message{To: &to, Value: big.NewInt(1e18)})
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	after, err := backend.BalanceAt(ctx, to, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1e18), new(big.Int).Sub(after, before))

	// a second send picks up the next nonce
	_, err = Transact(ctx, backend, sender, Message{To: &to, Value: big.NewInt(1)})
	require.NoError(t, err)

	nonce, err := backend.NonceAt(ctx, sender.Address(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nonce)
}

func TestKeySenderRevert(t *testing.T) {
	backend, keys := deployertest.New(t)
	ctx := context.Background()

	// PUSH1 0 PUSH1 0 REVERT: deploying this always reverts
	initcode := common.FromHex("0x60006000fd")

	_, err := Transact(ctx, backend, NewKeySender(backend, keys[0]), Message{Data: initcode, Gas: 100_000})
	assert.ErrorIs(t, err, ErrTransactionFailed)
}

func TestNodeSender(t *testing.T) {
	from := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	hash := common.HexToHash("0xabc1")

	var got map[string]interface{}

	s := rpc.NewServer(nil)
	s.Register("eth_sendTransaction", func(_ context.Context, raw json.RawMessage) (interface{}, error) {
		if err := rpc.DecodeParams(raw, &got); err != nil {
			return nil, err
		}
		return hash, nil
	})

	ts := httptest.NewServer(s)
	defer ts.Close()

	client, err := gethrpc.DialHTTP(ts.URL)
	require.NoError(t, err)
	defer client.Close()

	sender := NewNodeSender(client, from)

	sent, err := sender.Send(context.Background(), Message{To: &to, Data: []byte{0xde, 0xad}, Value: big.NewInt(16)})
	require.NoError(t, err)
	assert.Equal(t, hash, sent)

	assert.Equal(t, "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", got["from"])
	assert.Equal(t, "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", got["to"])
	assert.Equal(t, "0xdead", got["data"])
	assert.Equal(t, "0x10", got["value"])
	assert.NotContains(t, got, "gas")
}

type fakeReceipts struct {
	misses  int
	receipt *types.Receipt
}

func (f *fakeReceipts) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	if f.misses > 0 {
		f.misses--
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

func TestWaitMined(t *testing.T) {
	defer func(old time.Duration) { pollInterval = old }(pollInterval)
	pollInterval = time.Millisecond

	ctx := context.Background()

	receipt, err := WaitMined(ctx, &fakeReceipts{misses: 3, receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}, common.Hash{})
	require.NoError(t, err)
	assert.NotNil(t, receipt)

	_, err = WaitMined(ctx, &fakeReceipts{receipt: &types.Receipt{Status: types.ReceiptStatusFailed}}, common.Hash{})
	assert.ErrorIs(t, err, ErrTransactionFailed)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = WaitMined(cancelled, &fakeReceipts{misses: 1 << 30}, common.Hash{})
	assert.ErrorIs(t, err, context.Canceled)
}

func dialStub(t *testing.T, chainID uint64, keystoreDir string) *node.Node {
	t.Helper()

	s := rpc.NewServer(nil)
	s.RegisterResult("eth_chainId", hexutil.Uint64(chainID))
	s.RegisterResult("eth_accounts", []common.Address{common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")})

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	cfg := node.DefaultConfig()
	cfg.RPCURL = ts.URL
	cfg.KeystoreDir = keystoreDir

	n, err := node.Dial(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(n.Close)

	return n
}

func TestGetDevnet(t *testing.T) {
	n := dialStub(t, 31337, t.TempDir())

	sender, err := Get(context.Background(), n, env.NewLoader(nil))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), sender.Address())
	assert.IsType(t, &nodeSender{}, sender)
}

func TestGetLive(t *testing.T) {
	dir := t.TempDir()
	n := dialStub(t, 1, dir)

	_, err := Get(context.Background(), n, env.NewLoader(nil))
	assert.ErrorIs(t, err, env.ErrMissingVariable)

	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	key := &keystore.Key{Address: crypto.PubkeyToAddress(priv.PublicKey), PrivateKey: priv}
	require.NoError(t, node.SaveKeystoreAccount(dir, "lido", "pw", key, keystore.LightScryptN, keystore.LightScryptP))

	t.Setenv(deployerVariable, "lido")
	t.Setenv(passphraseVariable, "pw")

	sender, err := Get(context.Background(), n, env.NewLoader(nil))
	require.NoError(t, err)
	assert.Equal(t, key.Address, sender.Address())
	assert.IsType(t, &keySender{}, sender)
}
