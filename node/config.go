package node

import (
	"os"
	"path/filepath"

	"github.com/Siasom1/gateseal-devnet/log"
)

type Config struct {
	RPCURL       string
	Network      string
	ConfigPath   string
	KeystoreDir  string
	ArtifactsDir string
	DataDir      string
	LogLevel     string
	LogFile      string
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		RPCURL:       "http://127.0.0.1:8545",
		KeystoreDir:  filepath.Join(home, ".gateseal", "keystore"),
		ArtifactsDir: ".",
		DataDir:      filepath.Join(home, ".gateseal"),
		LogLevel:     "info",
	}
}

func (c *Config) LogConfig() log.Config {
	return log.Config{Level: c.LogLevel, FilePath: c.LogFile}
}
