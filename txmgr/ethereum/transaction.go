package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/params"

	"github.com/DQYXACML/inkbench/node"
	"github.com/DQYXACML/inkbench/utils"
)

const (
	DefaultGasLimit uint64 = 30_000_000

	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 500 * time.Millisecond
)

var (
	DefaultGasTipCap = big.NewInt(params.GWei)
	DefaultGasFeeCap = new(big.Int).Mul(big.NewInt(20), big.NewInt(params.GWei))
)

type SenderConfig struct {
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		ConfirmTimeout: DefaultConfirmTimeout,
		PollInterval:   DefaultPollInterval,
	}
}

// TransactionSender builds, signs and broadcasts program calls, then waits
// for their receipts.
type TransactionSender struct {
	client node.EthClient
	cfg    SenderConfig

	// sender address -> *sync.Mutex, held from nonce query to receipt
	locks sync.Map
}

func NewTransactionSender(client node.EthClient, cfg SenderConfig) *TransactionSender {
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = DefaultConfirmTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &TransactionSender{client: client, cfg: cfg}
}

func (ts *TransactionSender) senderLock(addr common.Address) *sync.Mutex {
	mu, _ := ts.locks.LoadOrStore(addr, new(sync.Mutex))
	return mu.(*sync.Mutex)
}

// SendTx sends calldata to program from the account of key and returns the
// hash of the confirmed transaction. Every call broadcasts a new transaction.
func (ts *TransactionSender) SendTx(ctx context.Context, key common.Hash, program common.Address, calldata []byte) (common.Hash, error) {
	privateKey, err := crypto.ToECDSA(key.Bytes())
	if err != nil {
		return common.Hash{}, utils.WrapError(utils.ErrorTypeInvalidKey, "invalid private key", err)
	}
	from := crypto.PubkeyToAddress(privateKey.PublicKey)

	mu := ts.senderLock(from)
	mu.Lock()
	defer mu.Unlock()

	nonce, err := ts.client.TxCountByAddress(ctx, from)
	if err != nil {
		return common.Hash{}, utils.WrapError(utils.ErrorTypeNetworkQuery, "failed to get nonce", err).
			AddContext("address", from.Hex())
	}
	chainID, err := ts.client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, utils.WrapError(utils.ErrorTypeNetworkQuery, "failed to get chain id", err)
	}

	txData := BuildCallTx(chainID, uint64(nonce), program, calldata)
	signedTx, err := SignTx(txData, privateKey, chainID)
	if err != nil {
		return common.Hash{}, utils.WrapError(utils.ErrorTypeSigning, "failed to sign transaction", err)
	}
	rawTx, err := signedTx.MarshalBinary()
	if err != nil {
		return common.Hash{}, utils.WrapError(utils.ErrorTypeSigning, "failed to encode signed transaction", err)
	}

	if err := ts.client.SendRawTransaction(ctx, hexutil.Encode(rawTx)); err != nil {
		return common.Hash{}, utils.WrapError(utils.ErrorTypeSubmission, "failed to send transaction", err).
			AddContext("tx", signedTx.Hash().Hex())
	}
	log.Debug("transaction sent", "tx", signedTx.Hash(), "from", from, "nonce", uint64(nonce), "to", program)

	receipt, err := ts.waitForReceipt(ctx, signedTx.Hash())
	if err != nil {
		return common.Hash{}, err
	}
	log.Info("transaction confirmed", "tx", receipt.TxHash, "block", receipt.BlockNumber, "gasUsed", receipt.GasUsed)
	return receipt.TxHash, nil
}

// BuildCallTx returns a zero-value dynamic fee call with the fixed gas settings.
func BuildCallTx(chainID *big.Int, nonce uint64, to common.Address, data []byte) *types.DynamicFeeTx {
	return &types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: new(big.Int).Set(DefaultGasTipCap),
		GasFeeCap: new(big.Int).Set(DefaultGasFeeCap),
		Gas:       DefaultGasLimit,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      common.CopyBytes(data),
	}
}

func SignTx(txData *types.DynamicFeeTx, privateKey *ecdsa.PrivateKey, chainID *big.Int) (*types.Transaction, error) {
	signer := types.LatestSignerForChainID(chainID)
	return types.SignTx(types.NewTx(txData), signer, privateKey)
}

func (ts *TransactionSender) waitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctxwt, cancel := context.WithTimeout(ctx, ts.cfg.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(ts.cfg.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := ts.client.TxReceiptByHash(ctxwt, hash)
		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return nil, utils.NewError(utils.ErrorTypeConfirmation, "transaction failed").
					AddContext("tx", hash.Hex()).
					AddContext("status", receipt.Status)
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
		case ctxwt.Err() != nil:
			// the query was cut short by the deadline; reported below
		default:
			return nil, utils.WrapError(utils.ErrorTypeConfirmation, "failed to get transaction receipt", err).
				AddContext("tx", hash.Hex())
		}

		select {
		case <-ticker.C:
		case <-ctxwt.Done():
			if ctx.Err() != nil {
				return nil, utils.WrapError(utils.ErrorTypeConfirmation, "confirmation cancelled", ctx.Err()).
					AddContext("tx", hash.Hex())
			}
			return nil, utils.NewError(utils.ErrorTypeConfirmationTimeout, "transaction not confirmed in time").
				AddContext("tx", hash.Hex()).
				AddContext("timeout", ts.cfg.ConfirmTimeout)
		}
	}
}
