package config

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/DQYXACML/inkbench/flags"
	"github.com/DQYXACML/inkbench/node"
	"github.com/DQYXACML/inkbench/utils"
)

type Config struct {
	Chain ChainConfig
	Call  CallConfig
}

type ChainConfig struct {
	RpcUrl         string
	PrivateKey     common.Hash
	Program        common.Address
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

type CallConfig struct {
	Signature string
	Args      []string
}

func LoadConfig(cliCtx *cli.Context) (Config, error) {
	cfg := Config{
		Chain: ChainConfig{
			RpcUrl:         cliCtx.String(flags.RpcFlag.Name),
			ConfirmTimeout: cliCtx.Duration(flags.ConfirmTimeoutFlag.Name),
			PollInterval:   cliCtx.Duration(flags.PollIntervalFlag.Name),
		},
		Call: CallConfig{
			Signature: cliCtx.String(flags.SignatureFlag.Name),
			Args:      cliCtx.StringSlice(flags.ArgsFlag.Name),
		},
	}

	key, err := ParsePrivateKey(cliCtx.String(flags.PrivateKeyFlag.Name))
	if err != nil {
		return Config{}, err
	}
	cfg.Chain.PrivateKey = key

	program, err := ParseAddress(cliCtx.String(flags.ProgramFlag.Name), flags.ProgramFlag.Name)
	if err != nil {
		return Config{}, err
	}
	cfg.Chain.Program = program

	if cfg.Chain.RpcUrl == "" {
		return Config{}, utils.NewConfigError("rpc endpoint is empty", flags.RpcFlag.Name)
	}
	if err := ValidateRPCURL(cfg.Chain.RpcUrl, flags.RpcFlag.Name); err != nil {
		return Config{}, err
	}
	if cfg.Call.Signature == "" {
		return Config{}, utils.NewConfigError("method signature is empty", flags.SignatureFlag.Name)
	}

	log.Info("loaded config", "rpc", cfg.Chain.RpcUrl, "program", cfg.Chain.Program, "signature", cfg.Call.Signature)
	return cfg, nil
}

// ParsePrivateKey decodes a 32-byte hex key, 0x prefix optional.
func ParsePrivateKey(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, utils.WrapError(utils.ErrorTypeConfig, "private key is not valid hex", err).
			AddContext("field", flags.PrivateKeyFlag.Name)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, utils.NewConfigError("private key must be 32 bytes", flags.PrivateKeyFlag.Name).
			AddContext("length", len(b))
	}
	return common.BytesToHash(b), nil
}

func ValidateRPCURL(rpcUrl string, field string) error {
	if err := node.CheckRPCURL(rpcUrl); err != nil {
		return utils.WrapError(utils.ErrorTypeConfig, "unsupported rpc endpoint", err).
			AddContext("field", field)
	}
	return nil
}

func ParseAddress(s string, field string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, utils.NewConfigError("invalid address "+s, field)
	}
	return common.HexToAddress(s), nil
}
