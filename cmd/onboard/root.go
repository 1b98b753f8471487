package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Onboard runs the technician registration wizard",
	Long: `Onboard walks rope-access technicians through a multi-step registration
wizard and submits their answers and documents to a registration endpoint.

Configuration is read from flags, ONBOARD_* environment variables, ./onboard.yml
and the global XDG config file, in that order of precedence.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("endpoint", "", "Registration endpoint URL")
	pf.String("store", "", "Session store (memory, file, redis, postgres)")
	pf.String("store-dir", "", "Directory of the file store")
	pf.String("redis-addr", "", "Redis address for the redis store")
	pf.String("postgres-dsn", "", "PostgreSQL DSN for the postgres store")
	pf.String("nats-url", "", `NATS server for notifications ("embedded" for in-process)`)
}
