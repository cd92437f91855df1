package inkbench

import (
	"context"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/DQYXACML/inkbench/calldata"
	"github.com/DQYXACML/inkbench/config"
	"github.com/DQYXACML/inkbench/node"
	"github.com/DQYXACML/inkbench/tracing"
	"github.com/DQYXACML/inkbench/txmgr/ethereum"
)

// InkBench runs the encode, submit and trace pipeline against one node.
type InkBench struct {
	client  node.EthClient
	sender  *ethereum.TransactionSender
	tracer  *tracing.InkTracer
	stopped atomic.Bool
}

type MeasureRequest struct {
	Key       common.Hash
	Program   common.Address
	Signature string
	Args      []string
}

// Measurement is the outcome of one pipeline run.
type Measurement struct {
	RunID     uuid.UUID
	Program   common.Address
	Signature string
	Args      []string
	Calldata  []byte
	TxHash    common.Hash
	Ink       uint64
	Trace     tracing.HostioTrace
}

func (m *Measurement) Gas() float64 {
	return tracing.InkToGas(m.Ink)
}

func NewInkBench(ctx context.Context, cfg *config.ChainConfig) (*InkBench, error) {
	ethClient, err := node.DialEthClient(ctx, cfg.RpcUrl)
	if err != nil {
		log.Error("new eth client fail", "err", err)
		return nil, err
	}
	return NewInkBenchWithClient(ethClient, ethereum.SenderConfig{
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.PollInterval,
	}), nil
}

func NewInkBenchWithClient(client node.EthClient, senderCfg ethereum.SenderConfig) *InkBench {
	return &InkBench{
		client: client,
		sender: ethereum.NewTransactionSender(client, senderCfg),
		tracer: tracing.NewInkTracer(client),
	}
}

// Measure encodes the call, sends it to the program and returns the ink the
// call consumed. Nothing is sent when the signature or arguments are invalid.
func (ib *InkBench) Measure(ctx context.Context, req MeasureRequest) (*Measurement, error) {
	m := &Measurement{
		RunID:     uuid.New(),
		Program:   req.Program,
		Signature: req.Signature,
		Args:      req.Args,
	}
	logger := log.New("run", m.RunID, "program", req.Program, "signature", req.Signature)

	data, err := calldata.GenerateCalldata(req.Signature, req.Args)
	if err != nil {
		logger.Debug("calldata generation failed", "err", err)
		return nil, err
	}
	m.Calldata = data
	logger.Debug("calldata generated", "calldata", common.Bytes2Hex(data))

	m.TxHash, err = ib.sender.SendTx(ctx, req.Key, req.Program, data)
	if err != nil {
		logger.Debug("transaction failed", "err", err)
		return nil, err
	}

	m.Trace, err = ib.tracer.TraceTransaction(ctx, m.TxHash)
	if err != nil {
		logger.Debug("trace failed", "tx", m.TxHash, "err", err)
		return nil, err
	}
	m.Ink, err = m.Trace.InkUsage()
	if err != nil {
		return nil, err
	}

	logger.Info("ink measured", "tx", m.TxHash, "ink", m.Ink, "gas", tracing.FormatGas(m.Ink))
	return m, nil
}

func (ib *InkBench) Close() {
	if ib.stopped.CompareAndSwap(false, true) {
		ib.client.Close()
	}
}
