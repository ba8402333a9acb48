// Command statecollectord is the collector process: it binds one PAIR
// socket per port listed in collector.txt, accepts a Greeting and then
// zero or more Reports from each connecting bank, and logs every frame
// it receives. It keeps no state of its own beyond what it logs.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	bankd "github.com/cajova-houba/bankd"
	"github.com/cajova-houba/bankd/bankcfg"
	"github.com/cajova-houba/bankd/collectorsink"
	"github.com/cajova-houba/bankd/peerconn"
	goerrors "github.com/go-errors/errors"
)

func main() {
	opts, err := bankcfg.ParseCollectorArgs(os.Args[1:])
	if err != nil {
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

func run(opts *bankcfg.CollectorOptions) error {
	ports, err := bankcfg.LoadCollectorPorts(opts.ConfigDir)
	if err != nil {
		return fmt.Errorf("load collector ports: %w", err)
	}
	if len(ports) == 0 {
		return fmt.Errorf("collectorsink: collector.txt lists no ports")
	}

	links := make([]*peerconn.ZMQLink, 0, len(ports))
	rawLinks := make([]collectorsink.RawLink, 0, len(ports))
	for _, port := range ports {
		l, err := peerconn.Listen(port)
		if err != nil {
			closeAll(links)
			return fmt.Errorf("listen on %s: %w", port, err)
		}
		links = append(links, l)
		rawLinks = append(rawLinks, l)
	}
	defer closeAll(links)

	collectorsink.Watch(rawLinks)
	return nil
}

func closeAll(links []*peerconn.ZMQLink) {
	for _, l := range links {
		_ = l.Close()
	}
}

func fatal(err error) {
	wrapped := goerrors.Wrap(err, 1)
	fmt.Fprintln(os.Stderr, wrapped.ErrorStack())
	os.Exit(1)
}
