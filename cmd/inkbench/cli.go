package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/log"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"github.com/DQYXACML/inkbench"
	"github.com/DQYXACML/inkbench/config"
	"github.com/DQYXACML/inkbench/flags"
	"github.com/DQYXACML/inkbench/suite"
	"github.com/DQYXACML/inkbench/tracing"
)

const Version = "v0.1.0"

func runMeasure(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Error("failed to load config", "error", err)
		return err
	}

	bench, err := inkbench.NewInkBench(ctx.Context, &cfg.Chain)
	if err != nil {
		return err
	}
	defer bench.Close()

	m, err := bench.Measure(ctx.Context, inkbench.MeasureRequest{
		Key:       cfg.Chain.PrivateKey,
		Program:   cfg.Chain.Program,
		Signature: cfg.Call.Signature,
		Args:      cfg.Call.Args,
	})
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "%d ink\n", m.Ink)
	fmt.Fprintln(w, tracing.FormatGas(m.Ink))
	if ctx.Bool(flags.HostiosFlag.Name) {
		printHostios(w, m.Trace)
	}
	return nil
}

func runTable(ctx *cli.Context) error {
	suiteCfg, err := config.LoadSuiteConfig(ctx.String(flags.SuiteFlag.Name))
	if err != nil {
		log.Error("failed to load suite", "error", err)
		return err
	}

	bench, err := inkbench.NewInkBench(ctx.Context, &config.ChainConfig{
		RpcUrl:         suiteCfg.RPCURL,
		ConfirmTimeout: ctx.Duration(flags.ConfirmTimeoutFlag.Name),
		PollInterval:   ctx.Duration(flags.PollIntervalFlag.Name),
	})
	if err != nil {
		return err
	}
	defer bench.Close()

	table, err := suite.NewRunner(bench).Run(ctx.Context, suiteCfg)
	if err != nil {
		return err
	}
	table.Render(ctx.App.Writer)
	return nil
}

// printHostios lists the ink spent per hostio, most expensive first.
func printHostios(w io.Writer, trace tracing.HostioTrace) {
	usage := trace.HostioInkUsage()
	type row struct {
		name  string
		calls int
		ink   uint64
	}
	rows := make([]row, 0, len(usage))
	for name, costs := range usage {
		r := row{name: name, calls: len(costs)}
		for _, c := range costs {
			r.ink += c
		}
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ink != rows[j].ink {
			return rows[i].ink > rows[j].ink
		}
		return rows[i].name < rows[j].name
	})

	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetHeader([]string{"Hostio", "Calls", "Ink", "Gas"})
	for _, r := range rows {
		tw.Append([]string{r.name, strconv.Itoa(r.calls), strconv.FormatUint(r.ink, 10), tracing.FormatGas(r.ink)})
	}
	tw.Render()
}

func NewCli() *cli.App {
	return &cli.App{
		Name:                      "inkbench",
		Usage:                     "Benchmark the ink usage of Stylus program calls",
		Version:                   Version,
		EnableBashCompletion:      true,
		DisableSliceFlagSeparator: true,
		Flags:                     flags.GlobalFlags,
		Before: func(ctx *cli.Context) error {
			setupLogging(ctx.Int(flags.VerbosityFlag.Name))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:        "run",
				Usage:       "Send one call and print the ink it used",
				Description: "Encodes the call, sends it to the program, waits for the receipt and traces it with the stylusTracer",
				Flags:       flags.RunFlags,
				Action:      runMeasure,
			},
			{
				Name:        "table",
				Usage:       "Measure every method of a suite on every program",
				Description: "Prints a method by program table of gas used",
				Flags:       flags.TableFlags,
				Action:      runTable,
			},
			{
				Name:        "version",
				Description: "print version",
				Action: func(ctx *cli.Context) error {
					cli.ShowVersion(ctx)
					return nil
				},
			},
		},
	}
}
