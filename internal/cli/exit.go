package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Exit statuses the orchestrator distinguishes when spawning an adapter.
const (
	StatusFailure           = 1
	StatusMissingDependency = 2
)

// ExitError pins a failure to a specific process exit status. Reported
// marks errors whose structured form already went to stderr, so Run must
// not print them again.
type ExitError struct {
	Status   int
	Reported bool
	Err      error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Status)
}

func (e *ExitError) Unwrap() error { return e.Err }

type errorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// reportStructured writes the stderr error contract object and wraps the
// cause with its exit status.
func reportStructured(w io.Writer, status int, message, detail string, cause error) error {
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Detail: detail})
	return &ExitError{Status: status, Reported: true, Err: cause}
}

// Run executes cmd and maps the resulting error onto the process exit
// status.
func Run(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.Reported {
			fmt.Fprintln(os.Stderr, err)
		}
		return exitErr.Status
	}

	fmt.Fprintln(os.Stderr, err)
	return StatusFailure
}
