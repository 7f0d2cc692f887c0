package params

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
)

// ------------------------------------------------------------
// GENESIS ACCOUNTS
// ------------------------------------------------------------
//
// The runtime derives its funded genesis accounts from a mnemonic.
// Only the parameters live here; derivation happens in the runtime.
// ------------------------------------------------------------

// TestMnemonic is the well-known development phrase. Never use it for real funds.
const TestMnemonic = "test test test test test test test test test test test junk"

const (
	DefaultDerivationPath = "m/44'/60'/0'"
	DefaultAccountCount   = 10

	// MaxAccounts is the largest account count the runtime will derive.
	MaxAccounts = 1000
)

var (
	etherDecimals = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// DefaultAccountsBalance is 10000 ether per derived account.
	DefaultAccountsBalance = new(big.Int).Mul(big.NewInt(10_000), etherDecimals)
)

// HDAccountsConfig is the account-generation sub-record of a network profile.
type HDAccountsConfig struct {
	Mnemonic        string `json:"mnemonic" yaml:"mnemonic" hcl:"mnemonic"`
	Path            string `json:"path" yaml:"path" hcl:"path"`
	Count           int    `json:"count" yaml:"count" hcl:"count"`
	InitialIndex    int    `json:"initialIndex,omitempty" yaml:"initialIndex,omitempty" hcl:"initialIndex"`
	Passphrase      string `json:"passphrase,omitempty" yaml:"passphrase,omitempty" hcl:"passphrase"`
	AccountsBalance string `json:"accountsBalance,omitempty" yaml:"accountsBalance,omitempty" hcl:"accountsBalance"`
}

func DefaultHDAccounts() *HDAccountsConfig {
	return &HDAccountsConfig{
		Mnemonic: TestMnemonic,
		Path:     DefaultDerivationPath,
		Count:    DefaultAccountCount,
	}
}

// Words returns the mnemonic split on whitespace.
func (a *HDAccountsConfig) Words() []string {
	return strings.Fields(a.Mnemonic)
}

// Balance returns the genesis balance of every derived account in wei.
func (a *HDAccountsConfig) Balance() (*big.Int, error) {
	if a.AccountsBalance == "" {
		return new(big.Int).Set(DefaultAccountsBalance), nil
	}

	bal, ok := new(big.Int).SetString(a.AccountsBalance, 10)
	if !ok || bal.Sign() < 0 {
		return nil, fmt.Errorf("invalid accounts balance %q", a.AccountsBalance)
	}

	return bal, nil
}

// BasePath parses the configured path prefix.
func (a *HDAccountsConfig) BasePath() (accounts.DerivationPath, error) {
	return parseBasePath(a.Path)
}

// AccountPath returns the full derivation path of the i-th generated account,
// counting from InitialIndex.
func (a *HDAccountsConfig) AccountPath(i int) (accounts.DerivationPath, error) {
	if i < 0 || i >= a.Count {
		return nil, fmt.Errorf("account %d out of range [0, %d)", i, a.Count)
	}

	base, err := a.BasePath()
	if err != nil {
		return nil, err
	}

	path := make(accounts.DerivationPath, len(base), len(base)+1)
	copy(path, base)

	return append(path, uint32(a.InitialIndex+i)), nil
}

func parseBasePath(raw string) (accounts.DerivationPath, error) {
	if !strings.HasPrefix(raw, "m/") {
		return nil, fmt.Errorf("derivation path %q must start with m/", raw)
	}

	return accounts.ParseDerivationPath(strings.TrimSuffix(raw, "/"))
}
