package rpc

import (
	"encoding/json"
	"fmt"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
)

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

func (r *Request) isNotification() bool {
	return len(r.ID) == 0
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// Error is a JSON-RPC error object. Handlers may return it to pick the code.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (e *Error) ErrorCode() int {
	return e.Code
}

// InvalidParams builds a -32602 error.
func InvalidParams(format string, args ...interface{}) *Error {
	return &Error{Code: codeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

// DecodeParams unpacks positional params into the given targets.
// Missing trailing params leave their targets untouched.
func DecodeParams(raw json.RawMessage, targets ...interface{}) error {
	if len(raw) == 0 {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return InvalidParams("params must be an array: %v", err)
	}
	if len(list) > len(targets) {
		return InvalidParams("too many params: got %d, want at most %d", len(list), len(targets))
	}

	for i, item := range list {
		if err := json.Unmarshal(item, targets[i]); err != nil {
			return InvalidParams("param %d: %v", i, err)
		}
	}

	return nil
}
