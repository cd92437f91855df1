package node

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

/* -------------------------------------------------------------------------- */
/*                                  Mock RPC                                  */
/* -------------------------------------------------------------------------- */

type mockRPC struct{ mock.Mock }

func (m *mockRPC) Close() {}

func (m *mockRPC) CallContext(ctx context.Context, result any, method string, args ...any) error {
	return m.Called(ctx, result, method, args).Error(0)
}

/* -------------------------------------------------------------------------- */
/*                              Standard RPC calls                            */
/* -------------------------------------------------------------------------- */

func TestChainID(t *testing.T) {
	mrpc := new(mockRPC)
	cli := &myClient{rpc: mrpc}

	mrpc.On("CallContext", mock.Anything, mock.Anything, "eth_chainId", []interface{}(nil)).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*hexutil.Big) = hexutil.Big(*big.NewInt(412346))
		}).Return(nil).Once()

	chainID, err := cli.ChainID(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 412346, chainID.Int64())
	mrpc.AssertExpectations(t)
}

func TestTxCountByAddress(t *testing.T) {
	mrpc := new(mockRPC)
	cli := &myClient{rpc: mrpc}
	addr := common.HexToAddress("0x3f1eae7d46d88f08fc2f8ed27fcb2ab183eb2d0e")

	mrpc.On("CallContext", mock.Anything, mock.Anything, "eth_getTransactionCount", []interface{}{addr, "latest"}).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*hexutil.Uint64) = 7
		}).Return(nil).Once()

	nonce, err := cli.TxCountByAddress(context.Background(), addr)
	require.NoError(t, err)
	assert.EqualValues(t, 7, nonce)
	mrpc.AssertExpectations(t)
}

func TestTxCountByAddressError(t *testing.T) {
	mrpc := new(mockRPC)
	cli := &myClient{rpc: mrpc}

	mrpc.On("CallContext", mock.Anything, mock.Anything, "eth_getTransactionCount", mock.Anything).
		Return(errors.New("connection refused")).Once()

	_, err := cli.TxCountByAddress(context.Background(), common.Address{})
	assert.EqualError(t, err, "connection refused")
}

func TestSendRawTransaction(t *testing.T) {
	mrpc := new(mockRPC)
	cli := &myClient{rpc: mrpc}

	mrpc.On("CallContext", mock.Anything, nil, "eth_sendRawTransaction", []interface{}{"0x02f8"}).
		Return(nil).Once()

	require.NoError(t, cli.SendRawTransaction(context.Background(), "0x02f8"))
	mrpc.AssertExpectations(t)
}

func TestTxReceiptByHash(t *testing.T) {
	hash := common.HexToHash("0xaaf64b10913ae54c9430cb6c6043acecac6801c52b909291be19f76f35a5e4bc")

	t.Run("pending", func(t *testing.T) {
		mrpc := new(mockRPC)
		cli := &myClient{rpc: mrpc}
		// result stays nil: the node reports null for unknown receipts
		mrpc.On("CallContext", mock.Anything, mock.Anything, "eth_getTransactionReceipt", []interface{}{hash}).
			Return(nil).Once()

		_, err := cli.TxReceiptByHash(context.Background(), hash)
		assert.ErrorIs(t, err, ethereum.NotFound)
	})

	t.Run("included", func(t *testing.T) {
		mrpc := new(mockRPC)
		cli := &myClient{rpc: mrpc}
		mrpc.On("CallContext", mock.Anything, mock.Anything, "eth_getTransactionReceipt", []interface{}{hash}).
			Run(func(args mock.Arguments) {
				*args.Get(1).(**types.Receipt) = &types.Receipt{TxHash: hash, Status: types.ReceiptStatusSuccessful}
			}).Return(nil).Once()

		receipt, err := cli.TxReceiptByHash(context.Background(), hash)
		require.NoError(t, err)
		assert.Equal(t, hash, receipt.TxHash)
	})
}

/* -------------------------------------------------------------------------- */
/*                                  Raw calls                                 */
/* -------------------------------------------------------------------------- */

func TestRawCall(t *testing.T) {
	hash := common.HexToHash("0x01")
	var got jsonrpcRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"1","result":[]}`))
	}))
	defer srv.Close()

	cli := &myClient{rpc: new(mockRPC), http: newHTTPCaller(srv.URL, srv.Client())}
	body, err := cli.RawCall(context.Background(), "debug_traceTransaction", hash, map[string]string{"tracer": "stylusTracer"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":"1","result":[]}`, string(body))

	assert.Equal(t, "2.0", got.Version)
	assert.Equal(t, "1", got.ID)
	assert.Equal(t, "debug_traceTransaction", got.Method)
	require.Len(t, got.Params, 2)
	assert.Equal(t, hash.Hex(), got.Params[0])
	assert.Equal(t, map[string]any{"tracer": "stylusTracer"}, got.Params[1])
}

func TestRawCallHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	cli := &myClient{rpc: new(mockRPC), http: newHTTPCaller(srv.URL, srv.Client())}
	_, err := cli.RawCall(context.Background(), "debug_traceTransaction")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "405")
}

func TestRawCallWithoutHTTPEndpoint(t *testing.T) {
	cli := &myClient{rpc: new(mockRPC)}
	_, err := cli.RawCall(context.Background(), "debug_traceTransaction")
	assert.Error(t, err)
}

func TestCheckRPCURL(t *testing.T) {
	for _, u := range []string{"http://localhost:8547", "https://sepolia-rollup.arbitrum.io/rpc"} {
		assert.NoError(t, CheckRPCURL(u), u)
	}
	for _, u := range []string{"", "localhost:8547", "ws://localhost:8548", "wss://node/ws", "/tmp/nitro.ipc", "http://"} {
		assert.Error(t, CheckRPCURL(u), u)
	}
}

func TestDialEthClientRequiresHTTP(t *testing.T) {
	_, err := DialEthClient(context.Background(), "ws://localhost:8548")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http(s)")

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	client, err := DialEthClient(context.Background(), srv.URL)
	require.NoError(t, err)
	defer client.Close()
	assert.NotNil(t, client.(*myClient).http)
}
