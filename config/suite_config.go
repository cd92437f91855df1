package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/DQYXACML/inkbench/utils"
)

const DefaultSuiteRPCURL = "http://localhost:8547"

// SuiteConfig describes a comparison run: every method is measured against
// every program.
type SuiteConfig struct {
	RPCURL     string          `json:"rpcURL" yaml:"rpcURL"`
	PrivateKey string          `json:"privateKey" yaml:"privateKey"`
	Programs   []ProgramConfig `json:"programs" yaml:"programs"`
	Methods    []MethodConfig  `json:"methods" yaml:"methods"`
}

type ProgramConfig struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
	// PrivateKey overrides the suite key for this program.
	PrivateKey string `json:"privateKey,omitempty" yaml:"privateKey,omitempty"`
}

type MethodConfig struct {
	Signature string   `json:"signature" yaml:"signature"`
	Args      []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// LoadSuiteConfig reads a yaml or json suite file.
// INKBENCH_SUITE_RPC_URL and INKBENCH_SUITE_PRIVATE_KEY override the file.
func LoadSuiteConfig(path string) (*SuiteConfig, error) {
	cfg, err := loadSuiteFile(path)
	if err != nil {
		return nil, err
	}

	cfg.RPCURL = getStringValue("INKBENCH_SUITE_RPC_URL", cfg.RPCURL)
	cfg.PrivateKey = getStringValue("INKBENCH_SUITE_PRIVATE_KEY", cfg.PrivateKey)
	if cfg.RPCURL == "" {
		cfg.RPCURL = DefaultSuiteRPCURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *SuiteConfig) Validate() error {
	if len(c.Programs) == 0 {
		return utils.NewConfigError("suite lists no programs", "programs")
	}
	if len(c.Methods) == 0 {
		return utils.NewConfigError("suite lists no methods", "methods")
	}
	if err := ValidateRPCURL(c.RPCURL, "rpcURL"); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Programs))
	for i, p := range c.Programs {
		field := fmt.Sprintf("programs[%d]", i)
		if p.Name == "" {
			return utils.NewConfigError("program has no name", field)
		}
		if seen[p.Name] {
			return utils.NewConfigError("duplicate program name "+p.Name, field)
		}
		seen[p.Name] = true
		if _, err := ParseAddress(p.Address, field+".address"); err != nil {
			return err
		}
		if _, err := c.ProgramKey(p); err != nil {
			return err
		}
	}
	for i, m := range c.Methods {
		if strings.TrimSpace(m.Signature) == "" {
			return utils.NewConfigError("method has no signature", fmt.Sprintf("methods[%d]", i))
		}
	}
	return nil
}

// ProgramKey returns the key that signs calls to p.
func (c *SuiteConfig) ProgramKey(p ProgramConfig) (common.Hash, error) {
	key := p.PrivateKey
	if key == "" {
		key = c.PrivateKey
	}
	if key == "" {
		return common.Hash{}, utils.NewConfigError("no private key for program "+p.Name, "privateKey")
	}
	return ParsePrivateKey(key)
}

func (p ProgramConfig) GetAddress() common.Address {
	return common.HexToAddress(p.Address)
}

func loadSuiteFile(path string) (*SuiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapError(utils.ErrorTypeConfig, "failed to read suite file", err).
			AddContext("path", path)
	}

	var cfg SuiteConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = errors.Wrap(yaml.Unmarshal(data, &cfg), "failed to parse YAML")
	case ".json":
		err = errors.Wrap(json.Unmarshal(data, &cfg), "failed to parse JSON")
	default:
		return nil, utils.NewConfigError("unsupported suite file format: "+ext, "suite")
	}
	if err != nil {
		return nil, utils.WrapError(utils.ErrorTypeConfig, "invalid suite file", err).
			AddContext("path", path)
	}
	return &cfg, nil
}

func getStringValue(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}
