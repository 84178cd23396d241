package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/skeeterweed7-rgb/sprayer/pkg/mix"
	"github.com/skeeterweed7-rgb/sprayer/pkg/model"
)

// cmdLog logs an application: chemicals dispensed on a named road.
// Chemical ratios are computed against the capacity in effect at log time
// and frozen into the record.
func (a *app) cmdLog(args []string) int {
	flags := flag.NewFlagSet("log", flag.ContinueOnError)
	operator := flags.String("operator", "", "operator ID")
	var chems chemList
	flags.Var(&chems, "chem", "chemical as name=totalOz (repeatable)")
	weather := flags.String("weather", "", "weather description")
	temp := flags.Float64("temp", 0, "temperature in F")
	windDir := flags.String("wind-dir", "", "wind direction")
	windSpeed := flags.Float64("wind-speed", 0, "wind speed in mph")
	capOverride := flags.Float64("capacity", 0, "tank capacity override before logging")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	rest := flags.Args()
	if len(rest) != 2 {
		fmt.Fprintln(os.Stderr, "usage: spray log <road> <gallons> --chem name=oz ... --weather W --temp T --wind-dir D --wind-speed S")
		return 1
	}
	road := rest[0]
	gallons, err := strconv.ParseFloat(rest[1], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: log: bad gallons %q: %v\n", rest[1], err)
		return 1
	}

	led, err := a.openLedger(*operator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: log: %v\n", err)
		return exitCode(err)
	}
	if *capOverride > 0 {
		if err := led.SetCapacity(*capOverride); err != nil {
			fmt.Fprintf(os.Stderr, "spray: log: %v\n", err)
			return exitCode(err)
		}
	}
	state, err := led.CurrentState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: log: %v\n", err)
		return exitCode(err)
	}

	batch := mix.NewBatch(state.Capacity, a.cfg.Display.RatioDecimals)
	for _, spec := range chems {
		name, oz, err := parseChemSpec(spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "spray: log: %v\n", err)
			return 1
		}
		if err := batch.Add(name, oz); err != nil {
			fmt.Fprintf(os.Stderr, "spray: log: %v\n", err)
			return 1
		}
	}

	cond := model.Conditions{
		Weather:       *weather,
		Temperature:   *temp,
		WindDirection: *windDir,
		WindSpeed:     *windSpeed,
	}
	rec, err := led.LogApplication(road, gallons, batch.Chemicals(), cond)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spray: log: %v\n", err)
		return exitCode(err)
	}

	if *jsonOut {
		printJSON(rec)
	} else {
		fmt.Printf("logged %s: used %.2f gal, %.2f gal remaining\n",
			rec.RoadName, rec.GallonsUsed, rec.GallonsLeft)
		for _, c := range rec.ChemicalMix {
			fmt.Printf("  %s: %.2f oz applied (%s oz/gal)\n",
				c.Name, mix.QuantityApplied(rec.GallonsUsed, c.OzPerGal), c.OzPerGal)
		}
	}
	return 0
}
