// runits converts quantities between physical units.
//
// The same registry serves three front ends: this command line, an HTTP API
// and an MQTT responder, the latter two started by "runits serve".
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/edoardob90/runits/migrations"

	"github.com/edoardob90/runits/internal/units"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit statuses.
const (
	exitFailure = 1
	exitInput   = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(exitCode(err))
	}
}

// exitCode maps malformed or unresolvable input to exitInput and every other
// failure to exitFailure.
func exitCode(err error) int {
	switch units.Code(err) {
	case "syntax_error", "unknown_unit", "ambiguous_unit", "unknown_dimension":
		return exitInput
	}
	var usage *usageError
	if errors.As(err, &usage) {
		return exitInput
	}
	return exitFailure
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "runits",
		Short:         "Convert quantities between physical units",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $RUNITS_CONFIG or ./runits.yaml)")

	cfgPath := func() string { return configPath }
	root.AddCommand(
		newConvertCmd(cfgPath),
		newParseCmd(cfgPath),
		newUnitsCmd(cfgPath),
		newPrefixesCmd(cfgPath),
		newSystemsCmd(cfgPath),
		newDefineCmd(cfgPath),
		newRemoveCmd(cfgPath),
		newHistoryCmd(cfgPath),
		newServeCmd(cfgPath),
	)
	return root
}
