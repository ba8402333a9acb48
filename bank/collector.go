package bank

import (
	"fmt"

	"github.com/cajova-houba/bankd/peerconn"
	"github.com/cajova-houba/bankd/wire"
)

// CollectorLink implements Reporter over a dedicated peerconn.Link to
// the state collector. Delivery is best-effort: a send failure is
// reported via onFail and otherwise has no further effect, a collector
// outage just means the snapshot record is logged and dropped.
type CollectorLink struct {
	link   peerconn.Link
	onFail func(error)
}

// NewCollectorLink wires link as the collector transport, sending the
// startup greeting immediately. onFail may be nil; it is invoked
// whenever a report fails to send. A greeting that fails to send is
// returned as an error instead.
func NewCollectorLink(bankID string, link peerconn.Link, onFail func(error)) (*CollectorLink, error) {
	greeting, err := wire.EncodeGreeting(wire.NewGreeting(bankID))
	if err != nil {
		return nil, err
	}

	c := &CollectorLink{link: link, onFail: onFail}
	if err := link.SendRaw(greeting); err != nil {
		return nil, fmt.Errorf("bank: send collector greeting: %w", err)
	}
	return c, nil
}

// Report implements Reporter.
func (c *CollectorLink) Report(r wire.Report) {
	b, err := wire.EncodeReport(r)
	if err != nil {
		c.fail(err)
		return
	}
	if err := c.link.SendRaw(b); err != nil {
		c.fail(err)
	}
}

func (c *CollectorLink) fail(err error) {
	log.Errorf("collector link failed: %v", err)
	if c.onFail != nil {
		c.onFail(err)
	}
}
