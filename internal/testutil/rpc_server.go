package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// FakeNode is a minimal JSON-RPC node: it accepts any signed transaction,
// mines it immediately and answers traces with Trace.
type FakeNode struct {
	*httptest.Server

	ChainID uint64
	Trace   string

	mu    sync.Mutex
	nonce map[common.Address]uint64
	sent  []*types.Transaction
}

func NewFakeNode(chainID uint64, trace string) *FakeNode {
	n := &FakeNode{ChainID: chainID, Trace: trace, nonce: make(map[common.Address]uint64)}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	return n
}

// Sent returns the transactions received so far.
func (n *FakeNode) Sent() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.sent...)
}

func (n *FakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := n.handle(req)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32000,"message":%q}}`, req.ID, err.Error())
		return
	}
	fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
}

func (n *FakeNode) handle(req rpcRequest) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch req.Method {
	case "eth_chainId":
		return quote(hexutil.EncodeUint64(n.ChainID)), nil

	case "eth_getTransactionCount":
		var addr common.Address
		if err := json.Unmarshal(req.Params[0], &addr); err != nil {
			return "", err
		}
		return quote(hexutil.EncodeUint64(n.nonce[addr])), nil

	case "eth_sendRawTransaction":
		var raw string
		if err := json.Unmarshal(req.Params[0], &raw); err != nil {
			return "", err
		}
		tx, err := DecodeRawTx(raw)
		if err != nil {
			return "", err
		}
		from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
		if err != nil {
			return "", err
		}
		if tx.Nonce() != n.nonce[from] {
			return "", fmt.Errorf("nonce too low")
		}
		n.nonce[from]++
		n.sent = append(n.sent, tx)
		return quote(tx.Hash().Hex()), nil

	case "eth_getTransactionReceipt":
		var hash common.Hash
		if err := json.Unmarshal(req.Params[0], &hash); err != nil {
			return "", err
		}
		for _, tx := range n.sent {
			if tx.Hash() == hash {
				return receiptJSON(hash), nil
			}
		}
		return "null", nil

	case "debug_traceTransaction":
		return n.Trace, nil
	}
	return "", fmt.Errorf("the method %s does not exist/is not available", req.Method)
}

func receiptJSON(hash common.Hash) string {
	return fmt.Sprintf(`{"type":"0x2","status":"0x1","cumulativeGasUsed":"0x5208","logsBloom":"0x%s","logs":[],`+
		`"transactionHash":%q,"gasUsed":"0x5208","blockNumber":"0x1","transactionIndex":"0x0","effectiveGasPrice":"0x3b9aca00"}`,
		strings.Repeat("00", types.BloomByteLength), hash.Hex())
}

func quote(s string) string {
	return `"` + s + `"`
}
