// Package gatesealtest provides a scripted development runtime that plays
// blueprints, GateSeal factories, their GateSeals and sealables over
// JSON-RPC, for tests that cannot run the compiled contracts.
package gatesealtest

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/require"

	"github.com/Siasom1/gateseal-devnet/blueprint"
	"github.com/Siasom1/gateseal-devnet/gateseal"
	"github.com/Siasom1/gateseal-devnet/rpc"
)

// GenesisTime is the timestamp of block 0. Every mined block adds one second
// unless evm_setNextBlockTimestamp says otherwise.
const GenesisTime = uint64(1_700_000_000)

// Account0 is the only unlocked account of the chain.
var Account0 = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// Stand-in bytecode. A create whose payload starts with FactoryBytecode
// deploys a factory, a blueprint preamble deploys a blueprint, anything else
// deploys a sealable.
var (
	FactoryBytecode  = []byte{0x60, 0xfa, 0xc7, 0x00}
	GateSealBytecode = []byte{0x60, 0x6a, 0x7e, 0x00}
	SealableBytecode = []byte{0x60, 0x5e, 0xa1, 0x00}
)

type seal struct {
	params gateseal.Params
}

// Chain mines one block per transaction.
type Chain struct {
	URL    string
	Server *rpc.Server
	Client *ethclient.Client
	RPC    *gethrpc.Client

	mu sync.Mutex

	number   uint64
	times    map[uint64]uint64
	nextTime uint64

	impersonated map[common.Address]bool
	receipts     map[common.Hash]*types.Receipt
	txCount      uint64

	code        map[common.Address][]byte
	factories   map[common.Address]common.Address
	seals       map[common.Address]*seal
	pausedUntil map[common.Address]uint64
}

// New serves a fresh chain over HTTP for the lifetime of t.
func New(t testing.TB) *Chain {
	t.Helper()

	c := &Chain{
		times:        map[uint64]uint64{0: GenesisTime},
		impersonated: make(map[common.Address]bool),
		receipts:     make(map[common.Hash]*types.Receipt),
		code:         make(map[common.Address][]byte),
		factories:    make(map[common.Address]common.Address),
		seals:        make(map[common.Address]*seal),
		pausedUntil:  make(map[common.Address]uint64),
	}

	s := rpc.NewServer(nil)
	s.RegisterResult("eth_chainId", hexutil.Uint64(31337))
	s.RegisterResult("eth_accounts", []common.Address{Account0})
	s.Register("eth_call", c.call)
	s.Register("eth_getCode", c.getCode)
	s.Register("eth_sendTransaction", c.sendTransaction)
	s.Register("eth_getTransactionReceipt", c.receipt)
	s.Register("eth_getBlockByNumber", c.blockByNumber)
	s.Register("eth_blockNumber", func(context.Context, json.RawMessage) (interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		return hexutil.Uint64(c.number), nil
	})
	s.Register("evm_mine", func(context.Context, json.RawMessage) (interface{}, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.mine()
		return "0x0", nil
	})
	s.Register("evm_setNextBlockTimestamp", func(_ context.Context, raw json.RawMessage) (interface{}, error) {
		var ts hexutil.Uint64
		if err := rpc.DecodeParams(raw, &ts); err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.nextTime = uint64(ts)
		return true, nil
	})
	s.Register("hardhat_impersonateAccount", c.impersonate(true))
	s.Register("hardhat_stopImpersonatingAccount", c.impersonate(false))

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	client, err := gethrpc.DialHTTP(ts.URL)
	require.NoError(t, err)

	c.URL = ts.URL
	c.Server = s
	c.RPC = client
	c.Client = ethclient.NewClient(client)
	t.Cleanup(c.Client.Close)

	return c
}

// Now returns the timestamp of the latest block.
func (c *Chain) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Chain) Impersonated(addr common.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.impersonated[addr]
}

func (c *Chain) SetImpersonated(addr common.Address, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.impersonated[addr] = on
}

func (c *Chain) now() uint64 {
	return c.times[c.number]
}

func (c *Chain) mine() {
	next := c.now() + 1
	if c.nextTime != 0 {
		next = c.nextTime
		c.nextTime = 0
	}
	c.number++
	c.times[c.number] = next
}

func (c *Chain) impersonate(on bool) rpc.HandlerFunc {
	return func(_ context.Context, raw json.RawMessage) (interface{}, error) {
		var addr common.Address
		if err := rpc.DecodeParams(raw, &addr); err != nil {
			return nil, err
		}
		c.SetImpersonated(addr, on)
		return true, nil
	}
}

type txArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
}

func (a txArgs) payload() []byte {
	if len(a.Input) > 0 {
		return a.Input
	}
	return a.Data
}

func (c *Chain) getCode(_ context.Context, raw json.RawMessage) (interface{}, error) {
	var (
		addr  common.Address
		block interface{}
	)
	if err := rpc.DecodeParams(raw, &addr, &block); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return hexutil.Bytes(c.code[addr]), nil
}

func (c *Chain) call(_ context.Context, raw json.RawMessage) (interface{}, error) {
	var (
		args  txArgs
		block interface{}
	)
	if err := rpc.DecodeParams(raw, &args, &block); err != nil {
		return nil, err
	}
	if args.To == nil {
		return nil, fmt.Errorf("eth_call without to")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data := args.payload()
	to := *args.To

	if bp, ok := c.factories[to]; ok {
		return packOutput(gateseal.FactoryABI, data, bp)
	}

	if s, ok := c.seals[to]; ok {
		p := s.params
		return packOutput(gateseal.GateSealABI, data, map[string]interface{}{
			"get_sealing_committee":     p.SealingCommittee,
			"get_seal_duration_seconds": new(big.Int).SetUint64(p.SealDurationSeconds),
			"get_sealables":             p.Sealables,
			"get_expiry_timestamp":      new(big.Int).SetUint64(p.ExpiryTimestamp),
			"is_expired":                c.now() >= p.ExpiryTimestamp,
		})
	}

	if until, ok := c.pausedUntil[to]; ok {
		return packOutput(gateseal.SealableABI, data, c.now() < until)
	}

	return hexutil.Bytes{}, nil
}

// packOutput encodes the return value of the method selected by data.
// value is either the single result or a map of results by method name.
func packOutput(contractABI abi.ABI, data []byte, value interface{}) (interface{}, error) {
	method, err := contractABI.MethodById(data)
	if err != nil {
		return nil, err
	}

	if byName, ok := value.(map[string]interface{}); ok {
		value = byName[method.Name]
	}

	out, err := method.Outputs.Pack(value)
	if err != nil {
		return nil, err
	}

	return hexutil.Bytes(out), nil
}

func (c *Chain) sendTransaction(_ context.Context, raw json.RawMessage) (interface{}, error) {
	var args txArgs
	if err := rpc.DecodeParams(raw, &args); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mine()
	c.txCount++

	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], c.txCount)
	hash := crypto.Keccak256Hash(nonce[:])

	receipt := &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      hash,
		BlockNumber: new(big.Int).SetUint64(c.number),
		Logs:        []*types.Log{},
	}

	var err error

	switch {
	case args.To == nil:
		err = c.create(args, receipt)
	case c.factories[*args.To] != (common.Address{}):
		err = c.createGateSeal(args, receipt)
	case c.seals[*args.To] != nil:
		err = c.seal(args, receipt)
	default:
		err = fmt.Errorf("no contract at %s", args.To.Hex())
	}
	if err != nil {
		return nil, err
	}

	c.receipts[hash] = receipt

	return hash, nil
}

func (c *Chain) create(args txArgs, receipt *types.Receipt) error {
	data := args.payload()
	address := crypto.CreateAddress(args.From, c.txCount)

	switch {
	case bytes.HasPrefix(data, FactoryBytecode):
		if len(data) < len(FactoryBytecode)+32 {
			return fmt.Errorf("constructor args missing")
		}
		c.factories[address] = common.BytesToAddress(data[len(data)-32:])
		c.code[address] = FactoryBytecode

	default:
		if code, err := blueprint.VerifyDeployPreamble(data); err == nil {
			c.code[address] = code
			break
		}
		c.code[address] = data
		c.pausedUntil[address] = 0
	}

	receipt.ContractAddress = address

	return nil
}

func (c *Chain) createGateSeal(args txArgs, receipt *types.Receipt) error {
	data := args.payload()

	method, err := gateseal.FactoryABI.MethodById(data)
	if err != nil {
		return err
	}
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return err
	}

	address := common.BigToAddress(new(big.Int).SetUint64(0x5ea1000 + c.txCount))
	c.seals[address] = &seal{params: gateseal.Params{
		SealingCommittee:    values[0].(common.Address),
		SealDurationSeconds: values[1].(*big.Int).Uint64(),
		Sealables:           values[2].([]common.Address),
		ExpiryTimestamp:     values[3].(*big.Int).Uint64(),
	}}
	c.code[address] = GateSealBytecode
	for _, s := range values[2].([]common.Address) {
		c.pausedUntil[s] = 0
	}

	event := gateseal.FactoryABI.Events["GateSealCreated"]
	logData, err := event.Inputs.NonIndexed().Pack(address)
	if err != nil {
		return err
	}
	receipt.Logs = append(receipt.Logs, &types.Log{
		Address: *args.To,
		Topics:  []common.Hash{event.ID},
		Data:    logData,
		TxHash:  receipt.TxHash,
	})

	return nil
}

// seal reverts unless the sender is the impersonated committee and the
// GateSeal has not expired.
func (c *Chain) seal(args txArgs, receipt *types.Receipt) error {
	s := c.seals[*args.To]
	if args.From != s.params.SealingCommittee || !c.impersonated[args.From] || c.now() >= s.params.ExpiryTimestamp {
		receipt.Status = types.ReceiptStatusFailed
		return nil
	}

	values, err := gateseal.GateSealABI.Methods["seal"].Inputs.Unpack(args.payload()[4:])
	if err != nil {
		return err
	}

	sealedAt := c.now()
	s.params.ExpiryTimestamp = sealedAt

	event := gateseal.GateSealABI.Events["Sealed"]
	for _, sealable := range values[0].([]common.Address) {
		c.pausedUntil[sealable] = sealedAt + s.params.SealDurationSeconds

		logData, err := event.Inputs.NonIndexed().Pack(
			*args.To, args.From, new(big.Int).SetUint64(s.params.SealDurationSeconds), sealable, new(big.Int).SetUint64(sealedAt),
		)
		if err != nil {
			return err
		}
		receipt.Logs = append(receipt.Logs, &types.Log{
			Address: *args.To,
			Topics:  []common.Hash{event.ID},
			Data:    logData,
			TxHash:  receipt.TxHash,
		})
	}

	return nil
}

func (c *Chain) receipt(_ context.Context, raw json.RawMessage) (interface{}, error) {
	var hash common.Hash
	if err := rpc.DecodeParams(raw, &hash); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.receipts[hash]
	if !ok {
		return nil, nil
	}

	return r, nil
}

func (c *Chain) blockByNumber(_ context.Context, raw json.RawMessage) (interface{}, error) {
	var (
		tag  string
		full bool
	)
	if err := rpc.DecodeParams(raw, &tag, &full); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	number := c.number
	if tag != "latest" && tag != "pending" {
		n, err := hexutil.DecodeUint64(tag)
		if err != nil {
			return nil, err
		}
		number = n
	}

	ts, ok := c.times[number]
	if !ok {
		return nil, nil
	}

	return &types.Header{
		Number:     new(big.Int).SetUint64(number),
		Time:       ts,
		Difficulty: new(big.Int),
	}, nil
}
