package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/skeeterweed7-rgb/sprayer/pkg/config"
	"github.com/skeeterweed7-rgb/sprayer/pkg/ledger"
	"github.com/skeeterweed7-rgb/sprayer/pkg/store"
)

const (
	defaultDir    = ".spraytank"
	defaultConfig = defaultDir + "/config.toml"
)

// app holds shared state for all CLI subcommands.
type app struct {
	store    *store.Store
	cfg      config.Config
	cfgPath  string
	operator string // default operator from SPRAY_OPERATOR / config file
}

// newApp loads configuration, opens the database, and resolves the default
// operator identity.
func newApp() (*app, error) {
	cfgPath := envOr("SPRAY_CONFIG", defaultConfig)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	dbPath := envOr("SPRAY_DB", cfg.DBPath)
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", dbPath, err)
	}
	return &app{
		store:    s,
		cfg:      cfg,
		cfgPath:  cfgPath,
		operator: envOr("SPRAY_OPERATOR", cfg.Operator),
	}, nil
}

// Close releases the database connection.
func (a *app) Close() { a.store.Close() }

// resolveOperator returns the operator ID from the flag (if non-empty),
// falling back to SPRAY_OPERATOR and then the config file.
func (a *app) resolveOperator(flagVal string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if a.operator != "" {
		return a.operator, nil
	}
	return "", fmt.Errorf("no operator: pass --operator or set SPRAY_OPERATOR")
}

// openLedger performs the operator handshake and loads the shift snapshot.
// No ledger operation is reachable without it.
func (a *app) openLedger(flagOperator string) (*ledger.Ledger, error) {
	op, err := a.resolveOperator(flagOperator)
	if err != nil {
		return nil, err
	}
	return ledger.Open(a.store, op, ledger.Options{
		DefaultCapacity: a.cfg.Tank.DefaultCapacityGal,
		RefillTolerance: a.cfg.Tank.RefillToleranceGal,
	})
}

// exitCode maps a ledger failure to the CLI exit-code contract: validation
// rejections are exit 2, everything else is 1.
func exitCode(err error) int {
	var ve *ledger.ValidationError
	if errors.As(err, &ve) {
		return 2
	}
	return 1
}

// parseChemSpec parses a --chem value of the form "name=totalOz".
func parseChemSpec(spec string) (string, float64, error) {
	name, ozStr, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("chem %q: want name=ounces", spec)
	}
	oz, err := strconv.ParseFloat(ozStr, 64)
	if err != nil {
		return "", 0, fmt.Errorf("chem %q: bad ounces: %v", spec, err)
	}
	return name, oz, nil
}

// chemList collects repeated --chem flags.
type chemList []string

func (c *chemList) String() string { return strings.Join(*c, ",") }

func (c *chemList) Set(v string) error {
	*c = append(*c, v)
	return nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
