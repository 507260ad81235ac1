package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/virtue186/sequencer/types"
)

// Client 是一个与 sequencer 节点 RPC API 交互的客户端
type Client struct {
	Endpoint string
	http     *http.Client
}

// New 创建一个新的 Client 实例
func New(endpoint string) *Client {
	return &Client{Endpoint: endpoint, http: http.DefaultClient}
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// call 发送一次 JSON-RPC 请求并把 result 解码到 out
func (c *Client) call(method string, params interface{}, out interface{}) error {
	reqBody, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return err
	}

	resp, err := c.http.Post(c.Endpoint, "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to connect to API server: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	if err := json.Unmarshal(bodyBytes, &rpcResp); err != nil {
		return fmt.Errorf("failed to parse RPC response: %w\nResponse body: %s", err, string(bodyBytes))
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if len(rpcResp.Result) == 0 {
		return fmt.Errorf("received empty result from API")
	}
	return json.Unmarshal(rpcResp.Result, out)
}

func (c *Client) SpecVersion() (string, error) {
	var version string
	err := c.call("starknet_specVersion", []interface{}{}, &version)
	return version, err
}

func (c *Client) BlockNumber() (uint64, error) {
	var number uint64
	err := c.call("starknet_blockNumber", []interface{}{}, &number)
	return number, err
}

func (c *Client) TransactionByHash(hash types.Felt) (*types.Transaction, error) {
	tx := new(types.Transaction)
	if err := c.call("starknet_getTransactionByHash", []interface{}{hash}, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *Client) TransactionReceipt(hash types.Felt) (*types.TransactionReceipt, error) {
	receipt := new(types.TransactionReceipt)
	if err := c.call("starknet_getTransactionReceipt", []interface{}{hash}, receipt); err != nil {
		return nil, err
	}
	return receipt, nil
}
