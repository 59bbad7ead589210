package actor

import "github.com/btcsuite/btclog/v2"

// log is the package-wide logger, silent by default. Callers wire up a real
// logger with UseLogger (see cmd/ractord for the daemon's wiring).
var log = btclog.Disabled

// UseLogger sets the package-wide logger used by the mailbox, dispatcher,
// and facade.
func UseLogger(logger btclog.Logger) {
	log = logger
}
