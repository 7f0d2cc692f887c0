package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// CommandResult is what a command prints when it succeeds.
type CommandResult interface {
	GetOutput() string
}

// outputter prints the outcome of one command, as text or as a single JSON
// line when --json is set. Errors go to stderr, results to stdout.
type outputter struct {
	stdout io.Writer
	stderr io.Writer
	json   bool

	result CommandResult
	err    error
}

func newOutputter(cmd *cobra.Command) *outputter {
	f := cmd.Flag(jsonOutputFlag)

	return &outputter{
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		json:   f != nil && f.Changed,
	}
}

func (o *outputter) setResult(r CommandResult) { o.result = r }

func (o *outputter) setError(err error) { o.err = err }

func (o *outputter) flush() {
	switch {
	case o.err != nil:
		if o.json {
			_, _ = fmt.Fprintln(o.stderr, encodeJSON(struct {
				Err string `json:"error"`
			}{o.err.Error()}))
			return
		}
		_, _ = fmt.Fprintln(o.stderr, "Error: "+o.err.Error())

	case o.result != nil:
		if o.json {
			_, _ = fmt.Fprintln(o.stdout, encodeJSON(o.result))
			return
		}
		_, _ = fmt.Fprintln(o.stdout, o.result.GetOutput())
	}
}

func encodeJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}

	return string(data)
}
