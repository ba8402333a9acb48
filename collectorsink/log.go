package collectorsink

import "github.com/btcsuite/btclog"

var log = btclog.Disabled

func UseLogger(l btclog.Logger) {
	log = l
}
