package env

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/Siasom1/gateseal-devnet/log"
)

var (
	ErrMissingVariable = errors.New("environment variable not set")
	ErrInvalidVariable = errors.New("invalid environment variable")
)

// Loader reads deployment parameters from the process environment.
type Loader struct {
	v      *viper.Viper
	logger *log.Logger
}

func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}

	v := viper.New()
	v.AutomaticEnv()

	return &Loader{v: v, logger: logger.Named("env")}
}

// Require returns the value of name, or ErrMissingVariable when it is unset or empty.
func (l *Loader) Require(name string) (string, error) {
	value := strings.TrimSpace(l.v.GetString(name))
	if value == "" {
		l.logger.Debug("variable not found", "name", name)

		return "", fmt.Errorf("%w: %s", ErrMissingVariable, name)
	}

	l.logger.Success("variable loaded", "name", name, "value", value)

	return value, nil
}

// Optional returns the value of name, or "" when it is unset.
func (l *Loader) Optional(name string) string {
	value := strings.TrimSpace(l.v.GetString(name))
	if value != "" {
		l.logger.Debug("variable loaded", "name", name)
	}

	return value
}

// Secret returns the value of name without logging it.
func (l *Loader) Secret(name string) string {
	return l.v.GetString(name)
}

func (l *Loader) Uint64(name string) (uint64, error) {
	raw, err := l.Require(name)
	if err != nil {
		return 0, err
	}

	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidVariable, name, err)
	}

	return n, nil
}

// Address parses a single hex address.
func (l *Loader) Address(name string) (common.Address, error) {
	raw, err := l.Require(name)
	if err != nil {
		return common.Address{}, err
	}

	return parseAddress(name, raw)
}

// Addresses parses a comma-separated list of hex addresses.
func (l *Loader) Addresses(name string) ([]common.Address, error) {
	raw, err := l.Require(name)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(raw, ",")
	out := make([]common.Address, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		addr, err := parseAddress(name, p)
		if err != nil {
			return nil, err
		}

		out = append(out, addr)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s: empty list", ErrInvalidVariable, name)
	}

	return out, nil
}

func parseAddress(name, raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%w: %s: %q is not an address", ErrInvalidVariable, name, raw)
	}

	return common.HexToAddress(raw), nil
}
