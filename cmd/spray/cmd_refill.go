package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// cmdRefill logs a refill. A request that would overfill the tank is capped
// at capacity and reported distinctly; a full tank rejects the refill
// entirely (exit 2).
func (a *app) cmdRefill(args []string) int {
	flags := flag.NewFlagSet("refill", flag.ContinueOnError)
	operator := flags.String("operator", "", "operator ID")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	rest := flags.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: spray refill <gallons>")
		return 1
	}
	gallons, err := strconv.ParseFloat(rest[0], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: refill: bad gallons %q: %v\n", rest[0], err)
		return 1
	}

	led, err := a.openLedger(*operator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: refill: %v\n", err)
		return exitCode(err)
	}
	rec, capped, err := led.LogRefill(gallons)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: refill: %v\n", err)
		return exitCode(err)
	}

	if *jsonOut {
		printJSON(map[string]interface{}{"record": rec, "capped": capped})
		return 0
	}
	fmt.Printf("added %.2f gal, %.2f gal in tank\n", rec.GallonsAdded(), rec.GallonsLeft)
	if capped {
		fmt.Printf("request for %.2f gal was capped at tank capacity\n", gallons)
	}
	return 0
}
