/*
main.go - Application entry point

PURPOSE:
  Command-line front end for the timeline planning engine.

COMMANDS:
  serve    Start the HTTP API (config, logging, store, engine, router)
  plan     Allocate a project snapshot file and print segments and budget
  expand   Print the occurrences of a recurrence rule

CONFIGURATION:
  serve reads config.yaml (or --config) and TIMELINE_* environment
  variables; see config/config.go for keys and defaults.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the cache janitor
  4. Close the store

EXAMPLES:
  timeline serve --config ./config.yaml
  TIMELINE_DATABASE_DRIVER=memory timeline serve
  timeline plan --file project.yaml
  timeline expand --type monthly --pattern dayOfWeek --week 5 --weekday fri --from 2025-01-01 --to 2025-06-30
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timeline",
		Short:         "Timeline planning engine",
		Long:          "Allocates project hour budgets across phases and recurring work, and serves the result over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newPlanCmd(), newExpandCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
