package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Siasom1/gateseal-devnet/node"
)

const (
	privateKeyVariable = "DEPLOYER_PRIVATE_KEY"
	passphraseVariable = "DEPLOYER_PASSPHRASE"
)

func newAccountsCmd(cfg *node.Config) *cobra.Command {
	c := &cobra.Command{
		Use:   "accounts",
		Short: "Manage keystore accounts used on live networks",
	}

	var lightKDF bool

	importCmd := &cobra.Command{
		Use:   "import <alias>",
		Short: "Encrypt DEPLOYER_PRIVATE_KEY into the keystore under alias, with DEPLOYER_PASSPHRASE",
		Args:  cobra.ExactArgs(1),
		RunE: runWith(cfg, func(_ context.Context, a *app, args []string) (CommandResult, error) {
			raw := a.env.Secret(privateKeyVariable)
			if raw == "" {
				return nil, fmt.Errorf("%s not set", privateKeyVariable)
			}

			passphrase := a.env.Secret(passphraseVariable)
			if passphrase == "" {
				return nil, fmt.Errorf("%s not set", passphraseVariable)
			}

			priv, err := crypto.HexToECDSA(strip0x(raw))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", privateKeyVariable, err)
			}

			id, err := uuid.NewRandom()
			if err != nil {
				return nil, err
			}

			key := &keystore.Key{
				Id:         id,
				Address:    crypto.PubkeyToAddress(priv.PublicKey),
				PrivateKey: priv,
			}

			scryptN, scryptP := keystore.StandardScryptN, keystore.StandardScryptP
			if lightKDF {
				scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
			}

			if err := node.SaveKeystoreAccount(a.cfg.KeystoreDir, args[0], passphrase, key, scryptN, scryptP); err != nil {
				return nil, err
			}

			a.logger.Success("account imported", "alias", args[0], "address", key.Address)

			return &AccountResult{Alias: args[0], Address: key.Address, File: node.KeystorePath(a.cfg.KeystoreDir, args[0])}, nil
		}),
	}

	importCmd.Flags().BoolVar(&lightKDF, "light-kdf", false, "reduce key-derivation RAM & CPU usage at some expense of KDF strength")

	c.AddCommand(importCmd)

	return c
}

func strip0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

type AccountResult struct {
	Alias   string         `json:"alias"`
	Address common.Address `json:"address"`
	File    string         `json:"file"`
}

func (r *AccountResult) GetOutput() string {
	return fmt.Sprintf("%s = %s (%s)", r.Alias, r.Address.Hex(), r.File)
}
