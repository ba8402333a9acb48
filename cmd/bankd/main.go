// Command bankd runs one bank node of the simulation: it loads its
// topology from the configuration directory, establishes its peer links
// and its collector link, then drives the trigger/poll/generate loop until
// the process is killed or the loop returns a fatal error.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	bankd "github.com/cajova-houba/bankd"
	"github.com/cajova-houba/bankd/bank"
	"github.com/cajova-houba/bankd/bankcfg"
	"github.com/cajova-houba/bankd/natutil"
	"github.com/cajova-houba/bankd/peerconn"
	"github.com/cajova-houba/bankd/storedb"
	"github.com/cajova-houba/bankd/trigger"
	goerrors "github.com/go-errors/errors"
)

// openingBalance seeds a freshly created account. A node that already has
// a balance file on disk keeps whatever it last persisted (storedb.Bolt's
// ensureInitialized only seeds on first open).
const openingBalance = 100

func main() {
	opts, err := bankcfg.ParseArgs(os.Args[1:])
	if err != nil {
		// go-flags has already printed usage; just exit non-zero.
		os.Exit(1)
	}

	logFile := filepath.Join(opts.ConfigDir, "log.txt")
	if err := bankd.InitLogRotator(logFile, opts.LogLevel, opts.Console); err != nil {
		fatal(fmt.Errorf("init log rotator: %w", err))
	}

	if err := run(opts); err != nil {
		fatal(err)
	}
}

func run(opts *bankcfg.Options) error {
	bankID := opts.Positional.BankID

	cfg, err := bankcfg.Load(opts.ConfigDir, bankID)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	store, err := storedb.OpenBolt(opts.DBPath, openingBalance)
	if err != nil {
		return fmt.Errorf("open balance store: %w", err)
	}
	defer store.Close()

	listenLinks, err := bindListeners(cfg.Topology.ListenPorts)
	if err != nil {
		return err
	}
	defer closeAll(listenLinks)

	peers, err := dialPeers(cfg.Topology.DialPeers)
	if err != nil {
		return err
	}
	defer closeAll(peers)

	reporter, collectorLink, err := connectCollector(bankID, cfg.CollectorAddr)
	if err != nil {
		return err
	}
	if collectorLink != nil {
		defer collectorLink.Close()
	}

	node := bank.New(bankID, store, reporter, peers, listenLinks)

	watcher := trigger.New(opts.ConfigDir)
	defer watcher.Close()

	for {
		if err := node.Step(watcher.Fired()); err != nil {
			return fmt.Errorf("node loop: %w", err)
		}
	}
}

// bindListeners opens one ZeroMQ listen socket per configured port. NAT
// mapping is attempted on a best-effort basis: listen endpoints still
// work locally if no gateway is found.
func bindListeners(ports []string) ([]peerconn.Link, error) {
	if len(ports) > 0 {
		if mapper := natutil.Discover(); mapper != nil {
			for _, p := range ports {
				mapPort(mapper, p)
			}
		}
	}

	links := make([]peerconn.Link, 0, len(ports))
	for _, port := range ports {
		l, err := peerconn.Listen(port)
		if err != nil {
			closeAll(links)
			return nil, fmt.Errorf("listen on %s: %w", port, err)
		}
		links = append(links, l)
	}
	return links, nil
}

func mapPort(mapper natutil.Mapper, portStr string) {
	var port uint16
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return
	}
	// Best-effort: a mapping failure never stops the node from listening
	// locally, it only affects cross-NAT reachability.
	_, _ = mapper.AddMapping(port, "bankd")
}

// dialPeers dials and handshakes every configured peer address in order.
// A dial or handshake failure here is fatal: a node cannot
// usefully run with a peer link it could never establish.
func dialPeers(addrs []string) ([]peerconn.Link, error) {
	links := make([]peerconn.Link, 0, len(addrs))
	for _, addr := range addrs {
		l, err := peerconn.DialOut(addr)
		if err != nil {
			closeAll(links)
			return nil, fmt.Errorf("dial peer %s: %w", addr, err)
		}
		if err := peerconn.ClientHandshake(l); err != nil {
			closeAll(links)
			return nil, fmt.Errorf("handshake with peer %s: %w", addr, err)
		}
		links = append(links, l)
	}
	return links, nil
}

// connectCollector dials the configured collector address and wraps it in
// a bank.CollectorLink. Losing the collector link after
// startup is not fatal; only the initial connect is.
func connectCollector(bankID, addr string) (bank.Reporter, *peerconn.ZMQLink, error) {
	l, err := peerconn.DialOut(addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial collector %s: %w", addr, err)
	}

	onFail := func(err error) {
		// Reports are logged and dropped; see bank.CollectorLink.
		_ = err
	}

	collector, err := bank.NewCollectorLink(bankID, l, onFail)
	if err != nil {
		l.Close()
		return nil, nil, fmt.Errorf("greet collector %s: %w", addr, err)
	}
	return collector, l, nil
}

func closeAll(links []peerconn.Link) {
	for _, l := range links {
		_ = l.Close()
	}
}

// fatal prints err with a full stack trace and exits non-zero. Wrapping
// with go-errors here, at the single place every startup/runtime failure
// funnels through, is what makes a field-reported crash debuggable
// without needing to reproduce it.
func fatal(err error) {
	wrapped := goerrors.Wrap(err, 1)
	fmt.Fprintln(os.Stderr, wrapped.ErrorStack())
	os.Exit(1)
}
