package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/skeeterweed7-rgb/sprayer/pkg/ledger"
)

// cmdReset deletes the operator's entire shift log. Irreversible, so it
// refuses to run without an explicit --yes. A partial failure leaves the
// log inconsistent and is reported distinctly so the operator re-attempts.
func (a *app) cmdReset(args []string) int {
	flags := flag.NewFlagSet("reset", flag.ContinueOnError)
	operator := flags.String("operator", "", "operator ID")
	yes := flags.Bool("yes", false, "confirm irreversible deletion")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	led, err := a.openLedger(*operator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: reset: %v\n", err)
		return exitCode(err)
	}

	if !*yes {
		count := a.store.CountRecords(led.Operator())
		fmt.Fprintf(os.Stderr, "spray: reset would delete %d record(s) for %s permanently; re-run with --yes\n",
			count, led.Operator())
		return 1
	}

	if err := led.Reset(); err != nil {
		var pre *ledger.PartialResetError
		if errors.As(err, &pre) {
			fmt.Fprintf(os.Stderr, "spray: reset incomplete: %v\nthe log is inconsistent — run reset again\n", pre)
			return 1
		}
		fmt.Fprintf(os.Stderr, "spray: reset: %v\n", err)
		return exitCode(err)
	}

	state, err := led.CurrentState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: reset: %v\n", err)
		return exitCode(err)
	}
	fmt.Printf("shift log cleared; tank reset to %.2f / %.2f gal\n", state.GallonsLeft, state.Capacity)
	return 0
}
