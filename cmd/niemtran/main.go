// Package main provides the CLI entry point for niemtran, a tool that
// compiles NIEM XML Schema sets into translation models and translates XML
// instance documents into their linked-data JSON serialization.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.jacobcolvin.com/niemtran/log"
	"go.jacobcolvin.com/niemtran/version"
)

// exit codes per the command contract.
const (
	exitOK        = 0
	exitWarnings  = 1
	exitBootstrap = 2
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

func exitf(code int, format string, args ...any) *exitError {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

func main() {
	logCfg := log.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "niemtran",
		Short: "Compile NIEM schemas and translate XML messages to JSON",
		Long: `niemtran compiles a set of NIEM XML Schema documents into a compact
translation model, then uses that model to translate XML instance documents
into an equivalent linked-data JSON serialization.`,
		Version:       version.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	logCfg.RegisterFlags(rootCmd.PersistentFlags())

	completionErr := logCfg.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		handler, err := logCfg.NewHandler(os.Stderr)
		if err != nil {
			return exitf(exitBootstrap, "%v", err)
		}

		slog.SetDefault(slog.New(handler))

		return nil
	}

	rootCmd.AddCommand(
		newCheckCmd(),
		newCompileCmd(),
		newTranslateCmd(),
	)

	err := rootCmd.Execute()
	if err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintf(os.Stderr, "%s\n", ee.msg)
			}

			os.Exit(ee.code)
		}

		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitWarnings)
	}
}
