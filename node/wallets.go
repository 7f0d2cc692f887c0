package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/google/renameio/v2"
)

var ErrAccountNotFound = errors.New("keystore account not found")

// ------------------------------------------------------------
// Keystore accounts
// ------------------------------------------------------------
//
// Live deployments sign with a local keystore file named after
// the account alias: <dir>/<alias>.json.
// ------------------------------------------------------------

func KeystorePath(dir, alias string) string {
	return filepath.Join(dir, alias+".json")
}

// LoadKeystoreAccount decrypts the keystore file of alias.
func LoadKeystoreAccount(dir, alias, passphrase string) (*keystore.Key, error) {
	path := KeystorePath(dir, alias)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, alias)
	}
	if err != nil {
		return nil, err
	}

	key, err := keystore.DecryptKey(data, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decrypt %s: %w", alias, err)
	}

	return key, nil
}

// SaveKeystoreAccount encrypts key under alias. Existing files are never
// overwritten, and a failed write leaves no file behind.
func SaveKeystoreAccount(dir, alias, passphrase string, key *keystore.Key, scryptN, scryptP int) error {
	data, err := keystore.EncryptKey(key, passphrase, scryptN, scryptP)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	path := KeystorePath(dir, alias)

	pf, err := renameio.NewPendingFile(path, renameio.WithTempDir(dir), renameio.WithStaticPermissions(0o600))
	if err != nil {
		return err
	}
	defer pf.Cleanup()

	if _, err := pf.Write(data); err != nil {
		return err
	}
	if err := pf.Sync(); err != nil {
		return err
	}

	// link refuses an existing target, unlike rename
	if err := os.Link(pf.Name(), path); err != nil {
		return fmt.Errorf("save %s: %w", alias, err)
	}

	return nil
}
