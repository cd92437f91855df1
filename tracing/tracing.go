package tracing

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/DQYXACML/inkbench/node"
	"github.com/DQYXACML/inkbench/utils"
)

const (
	traceMethod = "debug_traceTransaction"
	tracerName  = "stylusTracer"
)

type tracerConfig struct {
	Tracer string `json:"tracer"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// InkTracer fetches stylusTracer traces and derives ink usage from them.
type InkTracer struct {
	client node.EthClient
}

func NewInkTracer(client node.EthClient) *InkTracer {
	return &InkTracer{client: client}
}

// TraceTransaction returns the hostio trace of tx.
func (t *InkTracer) TraceTransaction(ctx context.Context, tx common.Hash) (HostioTrace, error) {
	body, err := t.client.RawCall(ctx, traceMethod, tx.Hex(), tracerConfig{Tracer: tracerName})
	if err != nil {
		return nil, utils.WrapError(utils.ErrorTypeTraceRequest, "failed to trace transaction", err).
			AddContext("tx", tx.Hex())
	}
	trace, err := ParseTraceResponse(body)
	if err != nil {
		return nil, err
	}
	log.Debug("transaction traced", "tx", tx, "hostios", len(trace))
	return trace, nil
}

// GetInkUsage traces tx and returns the ink consumed by the call.
func (t *InkTracer) GetInkUsage(ctx context.Context, tx common.Hash) (uint64, error) {
	trace, err := t.TraceTransaction(ctx, tx)
	if err != nil {
		return 0, err
	}
	return trace.InkUsage()
}

// ParseTraceResponse decodes a raw JSON-RPC response body into a trace.
func ParseTraceResponse(body []byte) (HostioTrace, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, utils.WrapError(utils.ErrorTypeResponseParse, "failed to parse json response", err)
	}

	result, ok := envelope["result"]
	if !ok || string(result) == "null" {
		missing := utils.NewError(utils.ErrorTypeMissingResult, "failed to get result from response")
		if raw, ok := envelope["error"]; ok {
			var rpcErr rpcError
			if json.Unmarshal(raw, &rpcErr) == nil {
				missing.AddContext("code", rpcErr.Code).AddContext("message", rpcErr.Message)
			}
		}
		return nil, missing
	}

	var trace HostioTrace
	if err := json.Unmarshal(result, &trace); err != nil {
		return nil, utils.WrapError(utils.ErrorTypeTraceDeserialization, "failed to parse hostio trace", err)
	}
	return trace, nil
}

// InkUsage is the ink between the first record's start and the end of the
// second-to-last record. The last record is the program's exit.
func (t HostioTrace) InkUsage() (uint64, error) {
	if len(t) < 3 {
		return 0, utils.NewError(utils.ErrorTypeTraceTooShort, "hostio trace too short").
			AddContext("entries", len(t))
	}
	start := t[0].StartInk
	end := t[len(t)-2].EndInk
	if end > start {
		return 0, utils.NewError(utils.ErrorTypeInkUnderflow, "ink counter increased over the call").
			AddContext("startInk", start).
			AddContext("endInk", end)
	}
	return start - end, nil
}

// HostioInkUsage groups the cost of each outer hostio by name, in call order.
func (t HostioTrace) HostioInkUsage() map[string][]uint64 {
	usage := make(map[string][]uint64)
	for _, h := range t {
		usage[h.Name] = append(usage[h.Name], h.Cost())
	}
	return usage
}
