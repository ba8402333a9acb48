package trigger

import "github.com/btcsuite/btclog"

// log is this package's subsystem logger. It does nothing until the
// owning process calls UseLogger, matching btclog's "safe zero value"
// convention.
var log = btclog.Disabled

// UseLogger sets the logger used by this package. Called once from the
// process's log setup, mirroring lnd's per-package UseLogger functions.
func UseLogger(l btclog.Logger) {
	log = l
}
