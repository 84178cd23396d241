package main

import (
	"flag"
	"fmt"
	"os"
)

// cmdStatus shows the derived tank state and record counts.
func (a *app) cmdStatus(args []string) int {
	flags := flag.NewFlagSet("status", flag.ContinueOnError)
	operator := flags.String("operator", "", "operator ID")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	led, err := a.openLedger(*operator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: status: %v\n", err)
		return exitCode(err)
	}
	state, err := led.CurrentState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: status: %v\n", err)
		return exitCode(err)
	}

	apps, refills := 0, 0
	for _, r := range led.Records() {
		if r.IsRefill() {
			refills++
		} else {
			apps++
		}
	}

	if *jsonOut {
		printJSON(map[string]interface{}{
			"operator":     led.Operator(),
			"state":        state,
			"applications": apps,
			"refills":      refills,
		})
		return 0
	}
	fmt.Printf("operator: %s\n", led.Operator())
	fmt.Printf("tank:     %.2f / %.2f gal\n", state.GallonsLeft, state.Capacity)
	fmt.Printf("records:  %d application(s), %d refill(s)\n", apps, refills)
	return 0
}
