package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Siasom1/gateseal-devnet/log"
)

// HandlerFunc serves one JSON-RPC method. The result is JSON encoded as is.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Server is a JSON-RPC 2.0 endpoint over HTTP and websocket with per-method handlers.
// It stands in for a development runtime wherever one is needed locally.
type Server struct {
	logger *log.Logger

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	calls    []string
}

func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}

	return &Server{
		logger:   logger.Named("rpc"),
		handlers: make(map[string]HandlerFunc),
	}
}

// Register sets the handler for method, replacing any previous one.
func (s *Server) Register(method string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[method] = fn
}

// RegisterResult registers a handler that always answers with result.
func (s *Server) RegisterResult(method string, result interface{}) {
	s.Register(method, func(context.Context, json.RawMessage) (interface{}, error) {
		return result, nil
	})
}

// Calls returns the methods served so far, in arrival order.
func (s *Server) Calls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.calls))
	copy(out, s.calls)

	return out
}

// CallCount returns how many times method was called.
func (s *Server) CallCount(method string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.calls {
		if c == method {
			n++
		}
	}

	return n
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		s.serveWS(w, r)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := s.handleBody(r.Context(), body)
	if out == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.logger.Error("failed to write response", "err", err)
	}
}

// handleBody serves a single request or a batch. It returns nil when
// nothing needs an answer.
func (s *Server) handleBody(ctx context.Context, body []byte) interface{} {
	body = bytes.TrimSpace(body)

	if len(body) == 0 || body[0] != '[' {
		if resp := s.handleMessage(ctx, body); resp != nil {
			return resp
		}
		return nil
	}

	var batch []json.RawMessage
	if err := json.Unmarshal(body, &batch); err != nil {
		return errorResponse(nil, &Error{Code: codeParseError, Message: err.Error()})
	}
	if len(batch) == 0 {
		return errorResponse(nil, &Error{Code: codeInvalidRequest, Message: "empty batch"})
	}

	responses := make([]*Response, 0, len(batch))
	for _, raw := range batch {
		if resp := s.handleMessage(ctx, raw); resp != nil {
			responses = append(responses, resp)
		}
	}
	if len(responses) == 0 {
		return nil
	}

	return responses
}

func (s *Server) handleMessage(ctx context.Context, raw json.RawMessage) *Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return errorResponse(nil, &Error{Code: codeParseError, Message: err.Error()})
	}

	if req.Method == "" {
		return errorResponse(req.ID, &Error{Code: codeInvalidRequest, Message: "missing method"})
	}

	result, err := s.dispatch(ctx, req.Method, req.Params)

	if req.isNotification() {
		return nil
	}

	if err != nil {
		return errorResponse(req.ID, toRPCError(err))
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return errorResponse(req.ID, &Error{Code: codeServerError, Message: err.Error()})
	}

	return &Response{JSONRPC: "2.0", Result: encoded, ID: req.ID}
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	s.mu.Lock()
	s.calls = append(s.calls, method)
	fn, ok := s.handlers[method]
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("method not found", "method", method)

		return nil, &Error{Code: codeMethodNotFound, Message: "the method " + method + " does not exist/is not available"}
	}

	s.logger.Trace("dispatch", "method", method)

	return fn(ctx, params)
}

func toRPCError(err error) *Error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	return &Error{Code: codeServerError, Message: err.Error()}
}

func errorResponse(id json.RawMessage, err *Error) *Response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}

	return &Response{JSONRPC: "2.0", Error: err, ID: id}
}
