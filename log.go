// Package bankd wires up process-wide logging for every bankd subsystem
// package, following lnd's log.go convention: each subsystem package
// owns an unexported logger plus a UseLogger setter, and this package's
// InitLogRotator is the one place that builds the shared rotating
// backend and pushes a configured *btclog.Logger into each of them.
package bankd

import (
	"io"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/cajova-houba/bankd/bank"
	"github.com/cajova-houba/bankd/bankcfg"
	"github.com/cajova-houba/bankd/collectorsink"
	"github.com/cajova-houba/bankd/natutil"
	"github.com/cajova-houba/bankd/peerconn"
	"github.com/cajova-houba/bankd/trigger"
	"github.com/jrick/logrotate/rotator"
)

// subsystemLoggers maps each subsystem tag to the UseLogger setter of the
// package it belongs to.
var subsystemLoggers = map[string]func(btclog.Logger){
	"BANK": bank.UseLogger,
	"PCON": peerconn.UseLogger,
	"CFG":  bankcfg.UseLogger,
	"NAT":  natutil.UseLogger,
	"TRIG": trigger.UseLogger,
	"COLL": collectorsink.UseLogger,
}

var (
	logRotator *rotator.Rotator
	logBackend *btclog.Backend
)

// InitLogRotator opens (or creates) logFile for appending and wires it up
// as the write target for every subsystem logger at the given level. If
// console is true, log lines are additionally written to stdout.
func InitLogRotator(logFile string, level string, console bool) error {
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r

	backend := btclog.NewBackend(r)
	if console {
		backend = btclog.NewBackend(io.MultiWriter(r, os.Stdout))
	}
	logBackend = backend

	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		lvl = btclog.LevelInfo
	}

	for tag, useLogger := range subsystemLoggers {
		l := backend.Logger(tag)
		l.SetLevel(lvl)
		useLogger(l)
	}

	return nil
}

// SetLogLevel adjusts the level of every subsystem logger at runtime. It
// is a no-op until InitLogRotator has run.
func SetLogLevel(level string) {
	if logBackend == nil {
		return
	}
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return
	}
	for tag, useLogger := range subsystemLoggers {
		l := logBackend.Logger(tag)
		l.SetLevel(lvl)
		useLogger(l)
	}
}
