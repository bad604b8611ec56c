// Package config parses the exchange's command-line flags (SPEC_FULL.md
// §7.3). It uses the standard library flag package, matching both the
// teacher's own cmd/client/client.go and the original disorderBook's
// optparse block — neither reaches for a flags framework, so we don't
// either.
package config

import "flag"

// Config holds every CLI-tunable setting (spec.md §6 "CLI flags").
type Config struct {
	MaxBooks      int
	DefaultVenue  string
	DefaultSymbol string
	AccountsFile  string
	Port          int
	Excess        bool
	Websockets    bool
	WSPort        int
	BusBufferSize int
}

// Parse parses args (typically os.Args[1:]) into a Config, applying the
// same defaults the original disorderBook server ships with: venue
// TESTEX, symbol FOOBAR, port 8000.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("obex", flag.ContinueOnError)

	cfg := Config{}
	fs.IntVar(&cfg.MaxBooks, "maxbooks", 1000, "maximum number of books (venue/stock combos); 0 = unlimited")
	fs.StringVar(&cfg.DefaultVenue, "venue", "TESTEX", "default venue; created eagerly at startup")
	fs.StringVar(&cfg.DefaultSymbol, "symbol", "FOOBAR", "default symbol on the default venue; created eagerly")
	fs.StringVar(&cfg.AccountsFile, "accounts", "", "path to a JSON object mapping account to API key; empty = open mode")
	fs.IntVar(&cfg.Port, "port", 8000, "HTTP port")
	fs.BoolVar(&cfg.Excess, "excess", false, "enable endpoints that can return excessive responses (all orders for an account)")
	fs.BoolVar(&cfg.Websockets, "ws", false, "enable the websocket market-data transport")
	fs.IntVar(&cfg.WSPort, "wsport", 8001, "websocket port")
	fs.IntVar(&cfg.BusBufferSize, "bufsize", 64, "event bus per-subscriber channel capacity")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
