package main

import (
	"sync"

	"github.com/spf13/cobra"
)

// annotationStructuredLog marks commands whose diagnostics go through slog.
// Commands without it print plain text to stderr.
const annotationStructuredLog = "structured-log"

type commandExecutionContext struct {
	CommandPath       string
	UsesStructuredLog bool
}

var (
	execContextMu sync.RWMutex
	execContext   commandExecutionContext
)

func setCommandExecutionContext(ctx commandExecutionContext) {
	execContextMu.Lock()
	defer execContextMu.Unlock()
	execContext = ctx
}

func resetCommandExecutionContext() {
	setCommandExecutionContext(commandExecutionContext{})
}

func currentCommandExecutionContext() commandExecutionContext {
	execContextMu.RLock()
	defer execContextMu.RUnlock()
	return execContext
}

func structuredLog(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationStructuredLog] = "true"
	return cmd
}

func commandUsesStructuredLogging(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationStructuredLog] == "true" {
			return true
		}
	}
	return false
}
