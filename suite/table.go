package suite

import (
	"io"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/DQYXACML/inkbench/config"
	"github.com/DQYXACML/inkbench/tracing"
)

// Table holds the ink of each method (row) on each program (column).
type Table struct {
	Methods  []string
	Programs []string

	mu  sync.Mutex
	ink [][]uint64
}

func NewTable(cfg *config.SuiteConfig) *Table {
	t := &Table{
		Methods:  make([]string, len(cfg.Methods)),
		Programs: make([]string, len(cfg.Programs)),
		ink:      make([][]uint64, len(cfg.Methods)),
	}
	for i, m := range cfg.Methods {
		t.Methods[i] = m.Signature
		t.ink[i] = make([]uint64, len(cfg.Programs))
	}
	for i, p := range cfg.Programs {
		t.Programs[i] = p.Name
	}
	return t
}

func (t *Table) set(row, col int, ink uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ink[row][col] = ink
}

// Ink returns the measured ink for a method and program.
func (t *Table) Ink(row, col int) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ink[row][col]
}

func (t *Table) Render(w io.Writer) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader(append([]string{"Method"}, t.Programs...))
	for row, method := range t.Methods {
		cells := []string{method}
		for col := range t.Programs {
			cells = append(cells, tracing.FormatGas(t.Ink(row, col)))
		}
		tw.Append(cells)
	}
	tw.Render()
}
