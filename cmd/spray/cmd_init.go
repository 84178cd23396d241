package main

import (
	"flag"
	"fmt"
	"os"
)

// cmdInit creates the data directory and writes a default config file,
// leaving an existing one alone.
func (a *app) cmdInit(args []string) int {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	operator := flags.String("operator", "", "default operator to record in the config")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	if _, err := os.Stat(a.cfgPath); err == nil {
		fmt.Printf("config already exists at %s\n", a.cfgPath)
		return 0
	}

	cfg := a.cfg
	if *operator != "" {
		cfg.Operator = *operator
	}
	if err := cfg.Save(a.cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "spray: init: %v\n", err)
		return 1
	}

	fmt.Printf("initialized %s\n", a.cfgPath)
	fmt.Printf("database at %s\n", envOr("SPRAY_DB", cfg.DBPath))
	if cfg.Operator == "" {
		fmt.Println("set SPRAY_OPERATOR (or operator in the config) before logging")
	}
	return 0
}
