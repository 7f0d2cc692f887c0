package gateseal

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/hashicorp/go-multierror"
)

// ABI definitions of the contracts the bindings call, as emitted by the compiler.
const FactoryABIJSON = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[{"name":"_blueprint","type":"address"}]},
  {"type":"event","name":"GateSealCreated","anonymous":false,"inputs":[{"name":"gate_seal","type":"address","indexed":false}]},
  {"type":"function","name":"get_blueprint","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"create_gate_seal","stateMutability":"nonpayable","inputs":[
    {"name":"_sealing_committee","type":"address"},
    {"name":"_seal_duration_seconds","type":"uint256"},
    {"name":"_sealables","type":"address[]"},
    {"name":"_expiry_timestamp","type":"uint256"}
  ],"outputs":[]}
]`

const GateSealABIJSON = `[
  {"type":"event","name":"Sealed","anonymous":false,"inputs":[
    {"name":"gate_seal","type":"address","indexed":false},
    {"name":"sealed_by","type":"address","indexed":false},
    {"name":"sealed_for","type":"uint256","indexed":false},
    {"name":"sealable","type":"address","indexed":false},
    {"name":"sealed_at","type":"uint256","indexed":false}
  ]},
  {"type":"function","name":"get_sealing_committee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"get_seal_duration_seconds","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"get_sealables","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
  {"type":"function","name":"get_expiry_timestamp","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"is_expired","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"seal","stateMutability":"nonpayable","inputs":[{"name":"_sealables","type":"address[]"}],"outputs":[]}
]`

const SealableABIJSON = `[
  {"type":"function","name":"isPaused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"pauseFor","stateMutability":"nonpayable","inputs":[{"name":"_duration","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"resume","stateMutability":"nonpayable","inputs":[],"outputs":[]}
]`

var (
	FactoryABI  = mustParseABI(FactoryABIJSON)
	GateSealABI = mustParseABI(GateSealABIJSON)
	SealableABI = mustParseABI(SealableABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}

	return parsed
}

var ErrABIMismatch = errors.New("compiled ABI does not match the bindings")

// CheckABI verifies that a compiled ABI declares every method and event of
// want with the same signature. Constructor inputs are compared when want
// declares any.
func CheckABI(compiled, want abi.ABI) error {
	var result *multierror.Error

	for _, name := range sortedKeys(want.Methods) {
		got, ok := compiled.Methods[name]
		switch {
		case !ok:
			result = multierror.Append(result, fmt.Errorf("method %s: missing", want.Methods[name].Sig))
		case got.Sig != want.Methods[name].Sig:
			result = multierror.Append(result, fmt.Errorf("method %s: compiled as %s", want.Methods[name].Sig, got.Sig))
		}
	}

	for _, name := range sortedKeys(want.Events) {
		got, ok := compiled.Events[name]
		switch {
		case !ok:
			result = multierror.Append(result, fmt.Errorf("event %s: missing", want.Events[name].Sig))
		case got.ID != want.Events[name].ID:
			result = multierror.Append(result, fmt.Errorf("event %s: compiled as %s", want.Events[name].Sig, got.Sig))
		}
	}

	if a, b := argumentTypes(compiled.Constructor.Inputs), argumentTypes(want.Constructor.Inputs); len(want.Constructor.Inputs) > 0 && a != b {
		result = multierror.Append(result, fmt.Errorf("constructor(%s): compiled as constructor(%s)", b, a))
	}

	if result == nil {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrABIMismatch, result)
}

func argumentTypes(args abi.Arguments) string {
	types := make([]string, len(args))
	for i, arg := range args {
		types[i] = arg.Type.String()
	}

	return strings.Join(types, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
