// Package cli provides the command-line interface for the harvest application.
package cli

import (
	"github.com/law-makers/harvest/internal/app"
	"github.com/spf13/cobra"
)

// Global reference - cobra command contexts are not reliably propagated to
// subcommands, so the application handle is stored process-wide.
var globalApp *app.Application

// SetApp stores the Application for commands to access.
func SetApp(cmd *cobra.Command, a *app.Application) {
	globalApp = a
}

// GetAppFromCmd retrieves the Application for the given command.
func GetAppFromCmd(cmd *cobra.Command) *app.Application {
	return globalApp
}
