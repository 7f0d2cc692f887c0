package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siasom1/gateseal-devnet/artifacts"
	"github.com/Siasom1/gateseal-devnet/blueprint"
	"github.com/Siasom1/gateseal-devnet/deployer/deployertest"
	"github.com/Siasom1/gateseal-devnet/gateseal"
	"github.com/Siasom1/gateseal-devnet/gateseal/gatesealtest"
	"github.com/Siasom1/gateseal-devnet/node"
)

var (
	sealingCommittee = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	sealableA        = common.HexToAddress("0x0000000000000000000000000000000000000a01")
	sealableB        = common.HexToAddress("0x0000000000000000000000000000000000000a02")
)

// workspace is a project directory with compiled contracts, a data directory
// and a development chain to deploy to.
type workspace struct {
	chain   *gatesealtest.Chain
	root    string
	dataDir string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()

	w := &workspace{
		chain:   gatesealtest.New(t),
		root:    t.TempDir(),
		dataDir: t.TempDir(),
	}
	gatesealtest.WriteBuild(t, w.root)

	return w
}

func (w *workspace) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	return execute(t, append([]string{"--rpc", w.chain.URL, "--artifacts", w.root, "--data-dir", w.dataDir}, args...)...)
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)

	return v
}

func (w *workspace) deployFactory(t *testing.T) DeployFactoryResult {
	t.Helper()

	t.Setenv("BLUEPRINT", "")

	out, stderr, err := w.run(t, "deploy-factory", "--json")
	require.NoError(t, err, stderr)

	return decode[DeployFactoryResult](t, out)
}

func (w *workspace) list(t *testing.T, kind string) []string {
	t.Helper()

	args := []string{"--network", "devnet", "deployments", "list", "--json"}
	if kind != "" {
		args = append(args, "--type", kind)
	}

	out, stderr, err := w.run(t, args...)
	require.NoError(t, err, stderr)

	var files []string
	for _, e := range decode[DeploymentsResult](t, out).Entries {
		files = append(files, e.File)
	}

	return files
}

func TestDeployFactoryCommand(t *testing.T) {
	w := newWorkspace(t)
	res := w.deployFactory(t)

	assert.Equal(t, "devnet", res.Network)
	assert.Equal(t, artifacts.Path(w.root, "devnet", artifacts.KindBlueprint, res.Blueprint), res.BlueprintFile)
	assert.Equal(t, artifacts.Path(w.root, "devnet", artifacts.KindFactory, res.Factory), res.FactoryFile)

	code, err := w.chain.Client.CodeAt(context.Background(), res.Blueprint, nil)
	require.NoError(t, err)
	assert.Equal(t, blueprint.Code(gatesealtest.GateSealBytecode), code)

	bp, err := artifacts.Load(w.root, "devnet", artifacts.KindBlueprint, res.Blueprint)
	require.NoError(t, err)
	assert.Equal(t, gatesealtest.Account0, bp.Deployer)
	assert.NotEqual(t, common.Hash{}, bp.TxHash)
	assert.Equal(t, uint64(1), bp.BlockNumber)

	f, err := artifacts.Load(w.root, "devnet", artifacts.KindFactory, res.Factory)
	require.NoError(t, err)
	require.NotNil(t, f.Blueprint)
	assert.Equal(t, res.Blueprint, *f.Blueprint)
	assert.Equal(t, uint64(2), f.BlockNumber)

	assert.Equal(t, []string{res.BlueprintFile, res.FactoryFile}, w.list(t, ""))
}

func TestDeployFactoryReusesBlueprint(t *testing.T) {
	w := newWorkspace(t)
	first := w.deployFactory(t)

	t.Setenv("BLUEPRINT", first.Blueprint.Hex())

	out, stderr, err := w.run(t, "--log-level", "info", "deploy-factory", "--json")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "blueprint reused")

	second := decode[DeployFactoryResult](t, out)
	assert.Equal(t, first.Blueprint, second.Blueprint)
	assert.Empty(t, second.BlueprintFile)
	assert.NotEqual(t, first.Factory, second.Factory)

	assert.Len(t, w.list(t, artifacts.KindBlueprint), 1)
	assert.Len(t, w.list(t, artifacts.KindFactory), 2)

	t.Setenv("BLUEPRINT", common.HexToAddress("0x01").Hex())

	_, stderr, err = w.run(t, "deploy-factory")
	require.Error(t, err)
	assert.Contains(t, stderr, blueprint.ErrNotBlueprint.Error())
}

func TestDeployFactoryChecksCompiledABI(t *testing.T) {
	w := newWorkspace(t)

	drifted := `{"contractName":"GateSealFactory","abi":[{"type":"function","name":"get_blueprint","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]}],"deploymentBytecode":{"bytecode":"0x60fac700"}}`
	require.NoError(t, os.WriteFile(filepath.Join(w.root, buildDir, factoryContract+".json"), []byte(drifted), 0o644))

	t.Setenv("BLUEPRINT", "")

	_, stderr, err := w.run(t, "deploy-factory")
	require.Error(t, err)
	assert.Contains(t, stderr, factoryContract)
	assert.Contains(t, stderr, gateseal.ErrABIMismatch.Error())
	assert.Contains(t, stderr, "create_gate_seal")

	_, err = os.Stat(filepath.Join(w.root, "deployed"))
	assert.True(t, os.IsNotExist(err), "nothing deployed")
}

func setGateSealEnv(t *testing.T, factory common.Address, duration, period string) {
	t.Helper()

	t.Setenv("FACTORY", factory.Hex())
	t.Setenv("SEALING_COMMITTEE", sealingCommittee.Hex())
	t.Setenv("SEAL_DURATION_SECONDS", duration)
	t.Setenv("SEALABLES", sealableA.Hex()+","+sealableB.Hex())
	t.Setenv("EXPIRY_PERIOD", period)
}

func TestDeployGateSealCommand(t *testing.T) {
	w := newWorkspace(t)
	factory := w.deployFactory(t)

	setGateSealEnv(t, factory.Factory, "604800", "31536000")

	head := w.chain.Now()

	out, stderr, err := w.run(t, "deploy-gate-seal", "--json")
	require.NoError(t, err, stderr)

	res := decode[DeployGateSealResult](t, out)
	want := gateseal.Params{
		SealingCommittee:    sealingCommittee,
		SealDurationSeconds: 604800,
		Sealables:           []common.Address{sealableA, sealableB},
		ExpiryTimestamp:     head + 31536000,
	}
	assert.Equal(t, want, res.Params)
	assert.Equal(t, artifacts.Path(w.root, "devnet", artifacts.KindGateSeal, res.GateSeal), res.File)

	rec, err := artifacts.Load(w.root, "devnet", artifacts.KindGateSeal, res.GateSeal)
	require.NoError(t, err)
	assert.Equal(t, head, rec.Timestamp)
	assert.Equal(t, uint64(3), rec.BlockNumber)
	require.NotNil(t, rec.Factory)
	assert.Equal(t, factory.Factory, *rec.Factory)
	require.NotNil(t, rec.Params)
	assert.Equal(t, want, *rec.Params)

	assert.Equal(t, []string{res.File}, w.list(t, artifacts.KindGateSeal))

	// the fresh record checks out and the GateSeal seals
	t.Setenv("GATE_SEAL", res.GateSeal.Hex())

	out, stderr, err = w.run(t, "check-gate-seal", "--simulate", "--json")
	require.NoError(t, err, stderr)

	check := decode[CheckResult](t, out)
	assert.Equal(t, res.GateSeal, check.GateSeal)
	assert.Equal(t, gateseal.ParamFields, check.Matched)
	assert.True(t, check.Simulated)
}

func TestDeployGateSealRejectsInvalidParams(t *testing.T) {
	w := newWorkspace(t)
	factory := w.deployFactory(t)

	setGateSealEnv(t, factory.Factory, "1209601", "31536001")

	_, stderr, err := w.run(t, "deploy-gate-seal")
	require.Error(t, err)
	assert.Contains(t, stderr, "seal duration")
	assert.Contains(t, stderr, "expiry")

	assert.Empty(t, w.list(t, artifacts.KindGateSeal))
}

func TestCheckFactoryCommand(t *testing.T) {
	w := newWorkspace(t)
	factory := w.deployFactory(t)

	t.Setenv("FACTORY", factory.Factory.Hex())

	out, stderr, err := w.run(t, "check-factory", "--json")
	require.NoError(t, err, stderr)

	res := decode[CheckResult](t, out)
	assert.NotEqual(t, common.Address{}, res.GateSeal)
	assert.Equal(t, gateseal.ParamFields, res.Matched)
	assert.True(t, res.Simulated)

	expired, err := gateseal.NewGateSeal(res.GateSeal, w.chain.Client).IsExpired(context.Background())
	require.NoError(t, err)
	assert.True(t, expired, "sealed during the check")

	assert.Empty(t, w.list(t, artifacts.KindGateSeal), "throwaway GateSeal is not recorded")
}

func TestAccountsImport(t *testing.T) {
	dir := t.TempDir()

	t.Setenv(privateKeyVariable, "0x"+deployertest.Key0)
	t.Setenv(passphraseVariable, "correct horse")

	out, stderr, err := execute(t, "--keystore", dir, "accounts", "import", "lido", "--light-kdf", "--json")
	require.NoError(t, err, stderr)

	res := decode[AccountResult](t, out)
	assert.Equal(t, "lido", res.Alias)
	assert.Equal(t, gatesealtest.Account0, res.Address)
	assert.Equal(t, node.KeystorePath(dir, "lido"), res.File)

	key, err := node.LoadKeystoreAccount(dir, "lido", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, gatesealtest.Account0, key.Address)

	t.Setenv(privateKeyVariable, deployertest.Key1)

	_, stderr, err = execute(t, "--keystore", dir, "accounts", "import", "lido", "--light-kdf")
	require.Error(t, err)
	assert.Contains(t, stderr, "file exists")

	key, err = node.LoadKeystoreAccount(dir, "lido", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, gatesealtest.Account0, key.Address, "existing keystore kept")
}

func TestFailureReportedOnce(t *testing.T) {
	t.Setenv("FACTORY", "")

	_, stderr, err := execute(t, "--log-level", "debug", "deploy-gate-seal")
	require.Error(t, err)

	errorLines := 0
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		if strings.HasPrefix(line, "Error: ") {
			errorLines++
		}
	}
	assert.Equal(t, 1, errorLines, stderr)
	assert.NotContains(t, stderr, "[ERROR]")
}
