package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

const (
	defaultDialTimeout = 5 * time.Second

	defaultRequestTimeout = 100 * time.Second
)

// EthClient is the subset of the node's JSON-RPC surface the benchmark uses.
type EthClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	TxCountByAddress(ctx context.Context, address common.Address) (hexutil.Uint64, error)

	SendRawTransaction(ctx context.Context, rawTx string) error
	// TxReceiptByHash returns ethereum.NotFound while the transaction is pending.
	TxReceiptByHash(ctx context.Context, hash common.Hash) (*types.Receipt, error)

	// RawCall performs a JSON-RPC request and returns the undecoded response body.
	RawCall(ctx context.Context, method string, params ...any) ([]byte, error)

	Close()
}

type RPC interface {
	Close()
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

type myClient struct {
	rpc  RPC
	http *httpCaller
}

func (m *myClient) ChainID(ctx context.Context) (*big.Int, error) {
	ctxwt, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	var chainID hexutil.Big
	if err := m.rpc.CallContext(ctxwt, &chainID, "eth_chainId"); err != nil {
		log.Error("Call eth_chainId method fail", "err", err)
		return nil, err
	}
	return (*big.Int)(&chainID), nil
}

func (m *myClient) TxCountByAddress(ctx context.Context, address common.Address) (hexutil.Uint64, error) {
	ctxwt, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	var nonce hexutil.Uint64
	err := m.rpc.CallContext(ctxwt, &nonce, "eth_getTransactionCount", address, "latest")
	if err != nil {
		log.Error("Call eth_getTransactionCount method fail", "err", err)
		return 0, err
	}
	log.Debug("get nonce by address success", "address", address, "nonce", uint64(nonce))
	return nonce, nil
}

func (m *myClient) SendRawTransaction(ctx context.Context, rawTx string) error {
	ctxwt, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	if err := m.rpc.CallContext(ctxwt, nil, "eth_sendRawTransaction", rawTx); err != nil {
		return err
	}
	log.Debug("send raw transaction success")
	return nil
}

func (m *myClient) TxReceiptByHash(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctxwt, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	var txReceipt *types.Receipt
	err := m.rpc.CallContext(ctxwt, &txReceipt, "eth_getTransactionReceipt", hash)
	if err != nil {
		return nil, err
	} else if txReceipt == nil {
		return nil, ethereum.NotFound
	}
	return txReceipt, nil
}

func (m *myClient) RawCall(ctx context.Context, method string, params ...any) ([]byte, error) {
	if m.http == nil {
		return nil, fmt.Errorf("raw calls need an http(s) endpoint")
	}
	ctxwt, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()
	return m.http.call(ctxwt, method, params)
}

func (m *myClient) Close() {
	m.rpc.Close()
}

// CheckRPCURL rejects endpoints RawCall cannot reach: only http(s) is supported.
func CheckRPCURL(rpcUrl string) error {
	u, err := url.Parse(rpcUrl)
	if err != nil {
		return errors.Wrapf(err, "invalid rpc url %q", rpcUrl)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("rpc url %q must be an http(s) endpoint", rpcUrl)
	}
	return nil
}

// DialEthClient connects to rpcUrl, which must be an http(s) endpoint.
func DialEthClient(ctx context.Context, rpcUrl string) (EthClient, error) {
	if err := CheckRPCURL(rpcUrl); err != nil {
		return nil, err
	}

	ctxwt, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()

	rpcClient, err := rpc.DialContext(ctxwt, rpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to dial address (%s): %w", rpcUrl, err)
	}
	return &myClient{rpc: NewRPC(rpcClient), http: newHTTPCaller(rpcUrl, http.DefaultClient)}, nil
}

type rpcClient struct {
	rpc *rpc.Client
}

func NewRPC(client *rpc.Client) RPC {
	return &rpcClient{client}
}

func (c *rpcClient) Close() {
	c.rpc.Close()
}

func (c *rpcClient) CallContext(ctx context.Context, result any, method string, args ...any) error {
	return c.rpc.CallContext(ctx, result, method, args...)
}

type jsonrpcRequest struct {
	Version string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      string `json:"id"`
}

// httpCaller posts JSON-RPC envelopes and hands back the body as-is, so the
// caller can tell a transport failure from a node-side error envelope.
type httpCaller struct {
	url    string
	client *http.Client
}

func newHTTPCaller(url string, client *http.Client) *httpCaller {
	return &httpCaller{url: url, client: client}
}

func (h *httpCaller) call(ctx context.Context, method string, params []any) ([]byte, error) {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(jsonrpcRequest{Version: "2.0", Method: method, Params: params, ID: "1"})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s request failed", method)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s request failed: %s: %s", method, resp.Status, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}
