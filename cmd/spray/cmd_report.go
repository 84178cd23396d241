package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/skeeterweed7-rgb/sprayer/pkg/report"
)

// cmdReport prints the shift report: last-application conditions, then
// applications and refills, each most-recent-first.
func (a *app) cmdReport(args []string) int {
	flags := flag.NewFlagSet("report", flag.ContinueOnError)
	operator := flags.String("operator", "", "operator ID")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	led, err := a.openLedger(*operator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: report: %v\n", err)
		return exitCode(err)
	}
	state, err := led.CurrentState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: report: %v\n", err)
		return exitCode(err)
	}

	fmt.Print(report.Build(led.Records(), report.Params{
		Capacity:       state.Capacity,
		GallonsLeft:    state.GallonsLeft,
		OperatorID:     led.Operator(),
		GeneratedAt:    time.Now(),
		VolumeDecimals: a.cfg.Display.VolumeDecimals,
	}))
	return 0
}
