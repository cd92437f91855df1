package flags

import (
	"time"

	"github.com/urfave/cli/v2"
)

const envVarPrefix = "INKBENCH"

func prefixEnvVars(name string) []string {
	return []string{envVarPrefix + "_" + name}
}

var (
	// global
	VerbosityFlag = &cli.IntFlag{
		Name:    "verbosity",
		Usage:   "Log level: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		EnvVars: prefixEnvVars("VERBOSITY"),
		Value:   3,
	}
	ConfirmTimeoutFlag = &cli.DurationFlag{
		Name:    "confirm-timeout",
		Usage:   "How long to wait for a transaction receipt",
		EnvVars: prefixEnvVars("CONFIRM_TIMEOUT"),
		Value:   60 * time.Second,
	}
	PollIntervalFlag = &cli.DurationFlag{
		Name:    "poll-interval",
		Usage:   "Delay between receipt queries",
		EnvVars: prefixEnvVars("POLL_INTERVAL"),
		Value:   500 * time.Millisecond,
	}

	// run
	RpcFlag = &cli.StringFlag{
		Name:    "rpc",
		Aliases: []string{"r"},
		Usage:   "The RPC endpoint",
		EnvVars: prefixEnvVars("RPC"),
		Value:   "http://localhost:8547",
	}
	PrivateKeyFlag = &cli.StringFlag{
		Name:     "key",
		Aliases:  []string{"k"},
		Usage:    "Private key of the sender, hex encoded",
		EnvVars:  prefixEnvVars("PRIVATE_KEY"),
		Required: true,
	}
	ProgramFlag = &cli.StringFlag{
		Name:     "program",
		Aliases:  []string{"p"},
		Usage:    "Address of the Stylus program",
		EnvVars:  prefixEnvVars("PROGRAM"),
		Required: true,
	}
	SignatureFlag = &cli.StringFlag{
		Name:     "signature",
		Aliases:  []string{"s"},
		Usage:    "Method signature, e.g. \"setNumber(uint256)\"",
		Required: true,
	}
	ArgsFlag = &cli.StringSliceFlag{
		Name:    "args",
		Aliases: []string{"a"},
		Usage:   "Method argument, repeat once per parameter",
	}
	HostiosFlag = &cli.BoolFlag{
		Name:  "hostios",
		Usage: "Also print the ink spent in each hostio",
	}

	// table
	SuiteFlag = &cli.StringFlag{
		Name:     "suite",
		Usage:    "Suite file (yaml or json) listing programs and methods",
		EnvVars:  prefixEnvVars("SUITE"),
		Required: true,
	}
)

var GlobalFlags = []cli.Flag{
	VerbosityFlag,
	ConfirmTimeoutFlag,
	PollIntervalFlag,
}

var RunFlags = []cli.Flag{
	RpcFlag,
	PrivateKeyFlag,
	ProgramFlag,
	SignatureFlag,
	ArgsFlag,
	HostiosFlag,
}

var TableFlags = []cli.Flag{
	SuiteFlag,
}
