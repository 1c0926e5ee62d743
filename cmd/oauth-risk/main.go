package main

import (
	"fmt"
	"io"
	"os"

	"github.com/open-sspm/oauth-risk/internal/logging"
)

func main() {
	if code := run(Execute, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// run executes the CLI and returns the process exit code, reporting any
// failure on stderr first.
func run(execute func() error, stderr io.Writer) int {
	err := execute()
	if err == nil {
		return 0
	}
	f := classify(err)
	if !f.quiet {
		report(stderr, currentCommandExecutionContext(), f)
	}
	return f.code
}

// report writes one log record for structured commands and one line of
// text for the rest.
func report(w io.Writer, cmdCtx commandExecutionContext, f failure) {
	if cmdCtx.UsesStructuredLog {
		logging.ForFailure(w, cmdCtx.CommandPath).
			Error(f.summary(), "exit_code", f.code, "error", f.err)
		return
	}
	switch f.code {
	case exitCanceled:
		fmt.Fprintln(w, "canceled")
	case exitFailure:
		fmt.Fprintf(w, "error: %v\n", f.err)
	default:
		fmt.Fprintf(w, "%s: %v\n", f.summary(), f.err)
	}
}
