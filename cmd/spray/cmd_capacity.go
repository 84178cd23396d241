package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// cmdCapacity changes the configured tank capacity. The change is written
// to the config file so future invocations start from it; it takes effect
// in the log itself with the next recorded event, which snapshots the
// capacity in force. Lowering capacity below current inventory clamps the
// derived gallons left.
func (a *app) cmdCapacity(args []string) int {
	flags := flag.NewFlagSet("capacity", flag.ContinueOnError)
	operator := flags.String("operator", "", "operator ID")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	rest := flags.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: spray capacity <gallons>")
		return 1
	}
	gallons, err := strconv.ParseFloat(rest[0], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: capacity: bad gallons %q: %v\n", rest[0], err)
		return 1
	}

	led, err := a.openLedger(*operator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: capacity: %v\n", err)
		return exitCode(err)
	}
	if err := led.SetCapacity(gallons); err != nil {
		fmt.Fprintf(os.Stderr, "spray: capacity: %v\n", err)
		return exitCode(err)
	}

	cfg := a.cfg
	cfg.Tank.DefaultCapacityGal = gallons
	if err := cfg.Save(a.cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "spray: capacity: %v\n", err)
		return 1
	}

	state, err := led.CurrentState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: capacity: %v\n", err)
		return exitCode(err)
	}
	if *jsonOut {
		printJSON(state)
	} else {
		fmt.Printf("capacity set to %.2f gal (%.2f gal in tank)\n", state.Capacity, state.GallonsLeft)
	}
	return 0
}
