package testutil

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"

	"github.com/DQYXACML/inkbench/node"
)

var _ node.EthClient = (*MockEthClient)(nil)

// MockEthClient is a testify mock of node.EthClient.
type MockEthClient struct {
	mock.Mock
}

func (m *MockEthClient) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	id, _ := args.Get(0).(*big.Int)
	return id, args.Error(1)
}

func (m *MockEthClient) TxCountByAddress(ctx context.Context, address common.Address) (hexutil.Uint64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(hexutil.Uint64), args.Error(1)
}

func (m *MockEthClient) SendRawTransaction(ctx context.Context, rawTx string) error {
	return m.Called(ctx, rawTx).Error(0)
}

func (m *MockEthClient) TxReceiptByHash(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	args := m.Called(ctx, hash)
	receipt, _ := args.Get(0).(*types.Receipt)
	return receipt, args.Error(1)
}

func (m *MockEthClient) RawCall(ctx context.Context, method string, params ...any) ([]byte, error) {
	args := m.Called(ctx, method, params)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

func (m *MockEthClient) Close() {
	m.Called()
}

// DecodeRawTx decodes the hex string passed to SendRawTransaction.
func DecodeRawTx(rawTx string) (*types.Transaction, error) {
	data, err := hexutil.Decode(rawTx)
	if err != nil {
		return nil, err
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return tx, nil
}

// SuccessReceipt returns a successful receipt for hash.
func SuccessReceipt(hash common.Hash) *types.Receipt {
	return &types.Receipt{
		TxHash:      hash,
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(1),
		GasUsed:     21000,
	}
}
