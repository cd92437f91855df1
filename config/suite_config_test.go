package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DQYXACML/inkbench/utils"
)

const testKey = "0xb6b15c8cb491557369f3c7d2c287b053eb229daa9c22138887752191c9520659"

const suiteYAML = `
rpcURL: http://localhost:8547
privateKey: "0xb6b15c8cb491557369f3c7d2c287b053eb229daa9c22138887752191c9520659"
programs:
  - name: opt-3
    address: "0xe78b46ae59984d11a215b6f84c7de4cb111ef63c"
  - name: opt-s
    address: "0xc6464a3072270a3da814bb0ec2907df935ff839d"
    privateKey: "0x0000000000000000000000000000000000000000000000000000000000000001"
methods:
  - signature: number()
  - signature: setNumber(uint)
    args: ["0xdeadbeef"]
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSuiteConfigYAML(t *testing.T) {
	cfg, err := LoadSuiteConfig(writeFile(t, "suite.yaml", suiteYAML))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8547", cfg.RPCURL)
	require.Len(t, cfg.Programs, 2)
	require.Len(t, cfg.Methods, 2)
	assert.Equal(t, common.HexToAddress("0xe78b46ae59984d11a215b6f84c7de4cb111ef63c"), cfg.Programs[0].GetAddress())
	assert.Equal(t, []string{"0xdeadbeef"}, cfg.Methods[1].Args)
	assert.Empty(t, cfg.Methods[0].Args)

	key, err := cfg.ProgramKey(cfg.Programs[0])
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash(testKey), key)

	key, err = cfg.ProgramKey(cfg.Programs[1])
	require.NoError(t, err)
	assert.Equal(t, common.BigToHash(common.Big1), key)
}

func TestLoadSuiteConfigJSON(t *testing.T) {
	path := writeFile(t, "suite.json", `{
		"privateKey": "b6b15c8cb491557369f3c7d2c287b053eb229daa9c22138887752191c9520659",
		"programs": [{"name": "counter", "address": "0xe78b46ae59984d11a215b6f84c7de4cb111ef63c"}],
		"methods": [{"signature": "increment()"}]
	}`)
	cfg, err := LoadSuiteConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultSuiteRPCURL, cfg.RPCURL)
	assert.Equal(t, "increment()", cfg.Methods[0].Signature)
}

func TestLoadSuiteConfigEnvOverrides(t *testing.T) {
	t.Setenv("INKBENCH_SUITE_RPC_URL", "http://sequencer:8547")
	t.Setenv("INKBENCH_SUITE_PRIVATE_KEY", "0x0000000000000000000000000000000000000000000000000000000000000002")

	cfg, err := LoadSuiteConfig(writeFile(t, "suite.yml", suiteYAML))
	require.NoError(t, err)
	assert.Equal(t, "http://sequencer:8547", cfg.RPCURL)

	key, err := cfg.ProgramKey(cfg.Programs[0])
	require.NoError(t, err)
	assert.Equal(t, common.BigToHash(common.Big2), key)
}

func TestLoadSuiteConfigErrors(t *testing.T) {
	for name, content := range map[string]string{
		"no programs":  "privateKey: \"" + testKey + "\"\nmethods:\n  - signature: number()\n",
		"no methods":   "privateKey: \"" + testKey + "\"\nprograms:\n  - name: a\n    address: \"0xe78b46ae59984d11a215b6f84c7de4cb111ef63c\"\n",
		"bad address":  "privateKey: \"" + testKey + "\"\nprograms:\n  - name: a\n    address: nowhere\nmethods:\n  - signature: number()\n",
		"missing key":  "programs:\n  - name: a\n    address: \"0xe78b46ae59984d11a215b6f84c7de4cb111ef63c\"\nmethods:\n  - signature: number()\n",
		"short key":    "privateKey: \"0x1234\"\nprograms:\n  - name: a\n    address: \"0xe78b46ae59984d11a215b6f84c7de4cb111ef63c\"\nmethods:\n  - signature: number()\n",
		"duplicate":    "privateKey: \"" + testKey + "\"\nprograms:\n  - name: a\n    address: \"0xe78b46ae59984d11a215b6f84c7de4cb111ef63c\"\n  - name: a\n    address: \"0xe78b46ae59984d11a215b6f84c7de4cb111ef63c\"\nmethods:\n  - signature: number()\n",
		"empty method": "privateKey: \"" + testKey + "\"\nprograms:\n  - name: a\n    address: \"0xe78b46ae59984d11a215b6f84c7de4cb111ef63c\"\nmethods:\n  - signature: \"\"\n",
		"invalid yaml": "programs: [\n",
		"ipc endpoint": "rpcURL: /tmp/nitro.ipc\nprivateKey: \"" + testKey + "\"\nprograms:\n  - name: a\n    address: \"0xe78b46ae59984d11a215b6f84c7de4cb111ef63c\"\nmethods:\n  - signature: number()\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSuiteConfig(writeFile(t, "suite.yaml", content))
			require.Error(t, err)
			assert.True(t, utils.IsType(err, utils.ErrorTypeConfig), err.Error())
		})
	}

	t.Run("ws env override", func(t *testing.T) {
		t.Setenv("INKBENCH_SUITE_RPC_URL", "ws://localhost:8548")
		_, err := LoadSuiteConfig(writeFile(t, "suite.yaml", suiteYAML))
		assert.True(t, utils.IsType(err, utils.ErrorTypeConfig))
	})

	_, err := LoadSuiteConfig(writeFile(t, "suite.toml", suiteYAML))
	assert.True(t, utils.IsType(err, utils.ErrorTypeConfig))

	_, err = LoadSuiteConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, utils.IsType(err, utils.ErrorTypeConfig))
}

func TestParsePrivateKey(t *testing.T) {
	want := common.HexToHash(testKey)
	for _, s := range []string{testKey, testKey[2:], "  " + testKey + "\n"} {
		key, err := ParsePrivateKey(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, key)
	}
	for _, s := range []string{"", "0x", "0xzz", testKey + "00"} {
		_, err := ParsePrivateKey(s)
		assert.True(t, utils.IsType(err, utils.ErrorTypeConfig), s)
	}
}

func TestLoadExampleSuite(t *testing.T) {
	cfg, err := LoadSuiteConfig("../examples/counter.yaml")
	require.NoError(t, err)
	assert.Len(t, cfg.Programs, 2)
	assert.Len(t, cfg.Methods, 5)
	assert.Equal(t, "increment()", cfg.Methods[4].Signature)
}
