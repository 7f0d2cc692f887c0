package deployer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Caller is a raw JSON-RPC client, such as *rpc.Client.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

type nodeSender struct {
	rpc     Caller
	address common.Address
}

// NewNodeSender sends from an account the runtime holds unlocked.
func NewNodeSender(rpc Caller, address common.Address) Sender {
	return &nodeSender{rpc: rpc, address: address}
}

func (s *nodeSender) Address() common.Address {
	return s.address
}

type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

func (s *nodeSender) Send(ctx context.Context, msg Message) (common.Hash, error) {
	args := sendTxArgs{
		From: s.address,
		To:   msg.To,
		Data: msg.Data,
	}
	if msg.Value != nil {
		args.Value = (*hexutil.Big)(msg.Value)
	}
	if msg.Gas != 0 {
		gas := hexutil.Uint64(msg.Gas)
		args.Gas = &gas
	}

	var hash common.Hash
	if err := s.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}

	return hash, nil
}
