// Command spray is the spray-tank shift ledger CLI — append-only tracking
// of chemical applications and refills with derived tank state.
package main

import (
	"fmt"
	"os"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Println("spray", version)
		return
	}

	a, err := newApp()
	if err != nil {
		fatal("%v", err)
	}
	defer a.Close()

	switch os.Args[1] {
	// Setup
	case "init":
		os.Exit(a.cmdInit(os.Args[2:]))

	// Operations
	case "log":
		os.Exit(a.cmdLog(os.Args[2:]))
	case "refill":
		os.Exit(a.cmdRefill(os.Args[2:]))
	case "capacity":
		os.Exit(a.cmdCapacity(os.Args[2:]))
	case "status":
		os.Exit(a.cmdStatus(os.Args[2:]))
	case "report":
		os.Exit(a.cmdReport(os.Args[2:]))
	case "watch":
		os.Exit(a.cmdWatch(os.Args[2:]))
	case "reset":
		os.Exit(a.cmdReset(os.Args[2:]))

	default:
		fmt.Fprintf(os.Stderr, "spray: unknown command %q\n", os.Args[1])
		fmt.Fprintln(os.Stderr, "Run 'spray --help' for usage.")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`spray — chemical-spray tank inventory ledger

Append-only shift log in shared SQLite. Tank state is derived from the
newest record; validation rejects physically impossible entries before
anything is persisted.

Usage:
  spray <command> [flags]

Setup:
  init                       Create the data directory and a default config

Commands:
  log <road> <gallons>       Log an application (requires --chem and weather flags)
  refill <gallons>           Log a refill (capped at tank capacity)
  capacity <gallons>         Change the tank capacity going forward
  status                     Show derived tank state and record counts
  report                     Print the shift report
  watch [--interval N]       Stream tank state as the log changes
  reset --yes                Delete every record (irreversible)

Environment:
  SPRAY_DB        SQLite database path (default: .spraytank/spray.db)
  SPRAY_OPERATOR  Operator identity (required for all ledger operations)
  SPRAY_CONFIG    Config file path (default: .spraytank/config.toml)

All read commands support --json for machine-readable output.
All commands support --operator <id> to override SPRAY_OPERATOR.

Exit codes:
  0  success
  1  error
  2  rejected by validation (bad input, insufficient inventory, tank full)
`)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "spray: "+format+"\n", args...)
	os.Exit(1)
}
