package deployer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	ErrTransactionFailed = errors.New("transaction failed")
	ErrNoAccounts        = errors.New("node has no unlocked accounts")
)

// Message is an unsigned call to be sent by a Sender. A nil To deploys Data.
type Message struct {
	To    *common.Address
	Value *big.Int
	Data  []byte
	Gas   uint64
}

// Sender submits transactions from one account.
type Sender interface {
	Address() common.Address
	Send(ctx context.Context, msg Message) (common.Hash, error)
}

// Backend is the part of an ethclient the deployment tooling uses.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Transact sends msg and waits for a successful receipt.
func Transact(ctx context.Context, backend Backend, sender Sender, msg Message) (*types.Receipt, error) {
	hash, err := sender.Send(ctx, msg)
	if err != nil {
		return nil, err
	}

	return WaitMined(ctx, backend, hash)
}

// callMsg converts msg into an eth_call / eth_estimateGas request from "from".
func (m Message) callMsg(from common.Address) ethereum.CallMsg {
	return ethereum.CallMsg{
		From:  from,
		To:    m.To,
		Value: m.Value,
		Data:  m.Data,
		Gas:   m.Gas,
	}
}

func (m Message) String() string {
	to := "<create>"
	if m.To != nil {
		to = m.To.Hex()
	}

	return fmt.Sprintf("to=%s data=%d bytes", to, len(m.Data))
}
