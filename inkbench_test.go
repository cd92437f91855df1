package inkbench

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DQYXACML/inkbench/internal/testutil"
	"github.com/DQYXACML/inkbench/txmgr/ethereum"
	"github.com/DQYXACML/inkbench/utils"
)

var (
	testKey     = common.HexToHash("0xb6b15c8cb491557369f3c7d2c287b053eb229daa9c22138887752191c9520659")
	testProgram = common.HexToAddress("0xe78b46ae59984d11a215b6f84c7de4cb111ef63c")
	testTx      = common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
)

const traceBody = `{"jsonrpc":"2.0","id":"1","result":[
	{"name":"user_entrypoint","args":"0x00000024","outs":"0x","startInk":1000,"endInk":1000},
	{"name":"storage_flush_cache","args":"0x00","outs":"0x","startInk":900,"endInk":400},
	{"name":"user_returned","args":"0x","outs":"0x00000000","startInk":300,"endInk":300}
]}`

func newBench(client *testutil.MockEthClient) *InkBench {
	return NewInkBenchWithClient(client, ethereum.SenderConfig{ConfirmTimeout: time.Second, PollInterval: 5 * time.Millisecond})
}

func expectSubmission(client *testutil.MockEthClient) {
	client.On("TxCountByAddress", mock.Anything, mock.Anything).Return(hexutil.Uint64(3), nil)
	client.On("ChainID", mock.Anything).Return(common.Big1, nil)
	client.On("SendRawTransaction", mock.Anything, mock.Anything).Return(nil)
	client.On("TxReceiptByHash", mock.Anything, mock.Anything).Return(testutil.SuccessReceipt(testTx), nil)
}

func TestMeasure(t *testing.T) {
	client := new(testutil.MockEthClient)
	expectSubmission(client)
	client.On("RawCall", mock.Anything, "debug_traceTransaction", mock.Anything).Return([]byte(traceBody), nil)

	m, err := newBench(client).Measure(context.Background(), MeasureRequest{
		Key:       testKey,
		Program:   testProgram,
		Signature: "setNumber(uint)",
		Args:      []string{"0xdeadbeef"},
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, m.RunID)
	assert.Equal(t, testTx, m.TxHash)
	assert.Equal(t, uint64(600), m.Ink)
	assert.InDelta(t, 0.06, m.Gas(), 1e-9)
	assert.Len(t, m.Trace, 3)
	assert.Equal(t, crypto.Keccak256([]byte("setNumber(uint256)"))[:4], m.Calldata[:4])
	assert.Len(t, m.Calldata, 36)
	client.AssertExpectations(t)
}

func TestMeasureRejectsBadCallBeforeSending(t *testing.T) {
	client := new(testutil.MockEthClient)
	bench := newBench(client)

	for _, req := range []MeasureRequest{
		{Key: testKey, Program: testProgram, Signature: "setNumber(uint)"},
		{Key: testKey, Program: testProgram, Signature: "setNumber(uint", Args: []string{"1"}},
		{Key: testKey, Program: testProgram, Signature: "setNumber(uint8)", Args: []string{"256"}},
	} {
		_, err := bench.Measure(context.Background(), req)
		assert.Error(t, err)
	}
	client.AssertNotCalled(t, "TxCountByAddress", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "SendRawTransaction", mock.Anything, mock.Anything)
}

func TestMeasureShortTrace(t *testing.T) {
	client := new(testutil.MockEthClient)
	expectSubmission(client)
	client.On("RawCall", mock.Anything, "debug_traceTransaction", mock.Anything).
		Return([]byte(`{"jsonrpc":"2.0","id":"1","result":[]}`), nil)

	_, err := newBench(client).Measure(context.Background(), MeasureRequest{
		Key: testKey, Program: testProgram, Signature: "number()",
	})
	require.Error(t, err)
	assert.True(t, utils.IsType(err, utils.ErrorTypeTraceTooShort), err.Error())
}

func TestClose(t *testing.T) {
	client := new(testutil.MockEthClient)
	client.On("Close").Return().Once()

	bench := newBench(client)
	bench.Close()
	bench.Close()
	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "Close", 1)
}
