package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/virtue186/sequencer/store"
	"github.com/virtue186/sequencer/types"
)

// SpecVersion is the Starknet JSON-RPC specification version served.
const SpecVersion = "0.6.0"

type ServerOpts struct {
	ListenAddr string              // 必需
	Store      *store.Store        // 必需
	Logger     log.Logger          // 可选
	Gatherer   prometheus.Gatherer // 可选，非空时提供 /metrics
}

// APIServer exposes the store over JSON-RPC 2.0. It reads only through
// the store facade.
type APIServer struct {
	ServerOpts
}

func NewAPIServer(opts ServerOpts) (*APIServer, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store dependency cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	return &APIServer{ServerOpts: opts}, nil
}

func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)
	if s.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *APIServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	level.Info(s.Logger).Log("msg", "starting API server", "listenAddr", s.ListenAddr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		level.Info(s.Logger).Log("msg", "stopping API server")
		return srv.Shutdown(shutdownCtx)
	}
}

// JSONRPCRequest 定义了 JSON-RPC 2.0 请求的结构
type JSONRPCRequest struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// JSONRPCResponse 定义了 JSON-RPC 2.0 响应的结构
type JSONRPCResponse struct {
	Version string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

var (
	errBlockNotFound  = &RPCError{Code: 24, Message: "Block not found"}
	errTxHashNotFound = &RPCError{Code: 29, Message: "Transaction hash not found"}
	errNoBlocks       = &RPCError{Code: 32, Message: "There are no blocks"}
)

func invalidParams(err error) *RPCError {
	return &RPCError{Code: -32602, Message: fmt.Sprintf("Invalid params: %s", err)}
}

func internalError(err error) *RPCError {
	return &RPCError{Code: -32603, Message: fmt.Sprintf("Internal error: %s", err)}
}

func (s *APIServer) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, JSONRPCResponse{
			Version: "2.0",
			Error:   &RPCError{Code: -32700, Message: "Parse error"},
		})
		return
	}

	level.Debug(s.Logger).Log("msg", "received rpc request", "method", req.Method)

	result, rpcErr := s.dispatch(req)
	if rpcErr != nil {
		if rpcErr.Code == -32603 {
			level.Error(s.Logger).Log("msg", "rpc request failed", "method", req.Method, "err", rpcErr.Message)
		}
		writeResponse(w, http.StatusOK, JSONRPCResponse{Version: "2.0", Error: rpcErr, ID: req.ID})
		return
	}
	writeResponse(w, http.StatusOK, JSONRPCResponse{Version: "2.0", Result: result, ID: req.ID})
}

func (s *APIServer) dispatch(req JSONRPCRequest) (interface{}, *RPCError) {
	switch req.Method {
	case "starknet_specVersion":
		return SpecVersion, nil
	case "starknet_blockNumber":
		return s.blockNumber()
	case "starknet_getTransactionByHash":
		return s.getTransactionByHash(req.Params)
	case "starknet_getTransactionReceipt":
		return s.getTransactionReceipt(req.Params)
	case "starknet_getBlockWithTxs":
		return s.getBlockWithTxs(req.Params)
	default:
		return nil, &RPCError{Code: -32601, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
}

func writeResponse(w http.ResponseWriter, status int, resp JSONRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func (s *APIServer) blockNumber() (interface{}, *RPCError) {
	height, ok, err := s.Store.GetHeight()
	if err != nil {
		return nil, internalError(err)
	}
	if !ok {
		return nil, errNoBlocks
	}
	return height, nil
}

func (s *APIServer) getTransactionByHash(params json.RawMessage) (interface{}, *RPCError) {
	var hash types.Felt
	if err := unmarshalParams(params, []string{"transaction_hash"}, &hash); err != nil {
		return nil, invalidParams(err)
	}
	tx, err := s.Store.GetTransaction(hash)
	if err != nil {
		return nil, internalError(err)
	}
	if tx == nil {
		return nil, errTxHashNotFound
	}
	return tx, nil
}

func (s *APIServer) getTransactionReceipt(params json.RawMessage) (interface{}, *RPCError) {
	var hash types.Felt
	if err := unmarshalParams(params, []string{"transaction_hash"}, &hash); err != nil {
		return nil, invalidParams(err)
	}
	receipt, err := s.Store.GetTransactionReceipt(hash)
	if err != nil {
		return nil, internalError(err)
	}
	if receipt == nil {
		return nil, errTxHashNotFound
	}
	return receipt, nil
}

func (s *APIServer) getBlockWithTxs(params json.RawMessage) (interface{}, *RPCError) {
	var id BlockID
	if err := unmarshalParams(params, []string{"block_id"}, &id); err != nil {
		return nil, invalidParams(err)
	}
	block, err := s.resolveBlock(id)
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return nil, rpcErr
		}
		return nil, internalError(err)
	}
	if block == nil {
		return nil, errBlockNotFound
	}
	return block, nil
}

func (s *APIServer) resolveBlock(id BlockID) (*types.MaybePendingBlock, error) {
	switch {
	case id.Hash != nil:
		return s.Store.GetBlockByHash(*id.Hash)
	case id.Number != nil:
		return s.Store.GetBlockByHeight(*id.Number)
	case id.Tag == BlockTagPending:
		return s.Store.GetPendingBlock()
	default:
		height, ok, err := s.Store.GetHeight()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errNoBlocks
		}
		return s.Store.GetBlockByHeight(height)
	}
}
