package tracing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HostioTraceInfo is one host I/O record produced by the stylusTracer.
// Nested calls carry their own records in Steps.
type HostioTraceInfo struct {
	Name     string             `json:"name"`
	Args     hexutil.Bytes      `json:"args"`
	Outs     hexutil.Bytes      `json:"outs"`
	StartInk uint64             `json:"startInk"`
	EndInk   uint64             `json:"endInk"`
	Address  *common.Address    `json:"address,omitempty"`
	Steps    *[]HostioTraceInfo `json:"steps,omitempty"`
}

// Cost is the ink spent inside this hostio, zero if the counters are inverted.
func (h HostioTraceInfo) Cost() uint64 {
	if h.EndInk > h.StartInk {
		return 0
	}
	return h.StartInk - h.EndInk
}

// HostioTrace is the top-level record list of a traced transaction.
type HostioTrace []HostioTraceInfo

// Names returns the outer hostio names in execution order.
func (t HostioTrace) Names() []string {
	names := make([]string, len(t))
	for i, h := range t {
		names[i] = h.Name
	}
	return names
}
