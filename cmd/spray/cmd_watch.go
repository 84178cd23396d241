package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// cmdWatch streams tank state as the log changes. Each store notification
// delivers the full ordered log; the ledger recomputes derived state
// idempotently from whichever snapshot arrives, so duplicates are harmless.
func (a *app) cmdWatch(args []string) int {
	flags := flag.NewFlagSet("watch", flag.ContinueOnError)
	operator := flags.String("operator", "", "operator ID")
	interval := flags.Int("interval", 1, "poll interval in seconds")
	jsonOut := flags.Bool("json", false, "JSON output (one JSON object per line)")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	led, err := a.openLedger(*operator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: watch: %v\n", err)
		return exitCode(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle ctrl-c gracefully.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	pollInterval := time.Duration(*interval) * time.Second
	fmt.Fprintf(os.Stderr, "watching shift log for %s (poll every %s, ctrl-c to stop)\n",
		led.Operator(), pollInterval)

	for snap := range a.store.Watch(ctx, led.Operator(), pollInterval) {
		if snap.Err != nil {
			fmt.Fprintf(os.Stderr, "spray: watch: %v\n", snap.Err)
			continue
		}
		if err := led.Apply(snap.Records); err != nil {
			fmt.Fprintf(os.Stderr, "spray: watch: %v\n", err)
			continue
		}
		state, err := led.CurrentState()
		if err != nil {
			fmt.Fprintf(os.Stderr, "spray: watch: %v\n", err)
			continue
		}
		if *jsonOut {
			printJSON(map[string]interface{}{"state": state, "records": len(snap.Records)})
		} else {
			fmt.Printf("[%s] %.2f / %.2f gal, %d record(s)\n",
				time.Now().Format("15:04:05"), state.GallonsLeft, state.Capacity, len(snap.Records))
		}
	}

	fmt.Fprintln(os.Stderr, "stopped")
	return 0
}
