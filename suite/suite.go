package suite

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/DQYXACML/inkbench"
	"github.com/DQYXACML/inkbench/calldata"
	"github.com/DQYXACML/inkbench/common/tasks"
	"github.com/DQYXACML/inkbench/config"
	"github.com/DQYXACML/inkbench/utils"
)

type Measurer interface {
	Measure(ctx context.Context, req inkbench.MeasureRequest) (*inkbench.Measurement, error)
}

// Runner measures every method of a suite against every program.
type Runner struct {
	bench Measurer
}

func NewRunner(bench Measurer) *Runner {
	return &Runner{bench: bench}
}

type target struct {
	column  int
	address common.Address
}

// lane is the ordered set of programs signed by one key. A lane runs its
// calls one after the other so the account's nonce advances in order.
type lane struct {
	key     common.Hash
	targets []target
}

// Run returns the filled table, or the first error. Every method is checked
// before any transaction is sent.
func (r *Runner) Run(ctx context.Context, cfg *config.SuiteConfig) (*Table, error) {
	for i, m := range cfg.Methods {
		if _, err := calldata.GenerateCalldata(m.Signature, m.Args); err != nil {
			return nil, utils.WrapError(utils.ErrorTypeConfig, "invalid suite method", err).
				AddContext("field", i).
				AddContext("signature", m.Signature)
		}
	}

	lanes, err := buildLanes(cfg)
	if err != nil {
		return nil, err
	}
	table := NewTable(cfg)

	group, gctx := tasks.WithContext(ctx, func(err error) {
		log.Error("suite lane crashed", "err", err)
	})
	for _, l := range lanes {
		l := l
		group.Go(func() error {
			return r.runLane(gctx, cfg, table, l)
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return table, nil
}

func (r *Runner) runLane(ctx context.Context, cfg *config.SuiteConfig, table *Table, l lane) error {
	for row, method := range cfg.Methods {
		for _, t := range l.targets {
			m, err := r.bench.Measure(ctx, inkbench.MeasureRequest{
				Key:       l.key,
				Program:   t.address,
				Signature: method.Signature,
				Args:      method.Args,
			})
			if err != nil {
				log.Error("measurement failed", "program", table.Programs[t.column], "signature", method.Signature, "err", err)
				return err
			}
			table.set(row, t.column, m.Ink)
		}
	}
	return nil
}

func buildLanes(cfg *config.SuiteConfig) ([]lane, error) {
	var lanes []lane
	index := make(map[common.Hash]int)
	for col, p := range cfg.Programs {
		key, err := cfg.ProgramKey(p)
		if err != nil {
			return nil, err
		}
		i, ok := index[key]
		if !ok {
			i = len(lanes)
			index[key] = i
			lanes = append(lanes, lane{key: key})
		}
		lanes[i].targets = append(lanes[i].targets, target{column: col, address: p.GetAddress()})
	}
	return lanes, nil
}
