package bank

import (
	"github.com/cajova-houba/bankd/peerconn"
	"github.com/cajova-houba/bankd/snapshot"
	"github.com/cajova-houba/bankd/wire"
	"github.com/davecgh/go-spew/spew"
)

// handleMarker implements the MARKER transitions of the snapshot
// protocol. link is nil for a self-initiated snapshot.
func (n *Node) handleMarker(m wire.Message, link peerconn.Link) error {
	markerID := m.MarkerID

	if !n.registry.Has(markerID) {
		balance, err := n.store.Balance()
		if err != nil {
			return err
		}

		initiator := snapshot.LinkHandle("")
		if link != nil {
			initiator = snapshot.LinkHandle(link.Handle())
		}

		ready := n.readyPeers()
		n.registry.Create(markerID, balance, initiator, len(ready))
		log.Infof("%s: opened snapshot %s, recorded_balance=%d, max_channels=%d",
			n.BankID, markerID, balance, len(ready))

		// Zero ready peers means no MARKER is sent; the completion
		// check below reports the snapshot immediately instead.
		for _, peer := range ready {
			if err := peer.Send(wire.Marker(markerID)); err != nil {
				return err
			}
		}
	} else if link != nil {
		log.Debugf("%s: completing channel %s for snapshot %s", n.BankID, link.Handle(), markerID)
		n.registry.CompleteChannel(markerID, snapshot.LinkHandle(link.Handle()))
	}

	if n.registry.IsComplete(markerID) {
		n.reportAndClear(markerID)
	}
	return nil
}

// reportAndClear implements the completion tail of the snapshot
// protocol: report to the collector, remove the snapshot from the
// registry, and clear the self-initiated flag if this was this node's
// own marker.
func (n *Node) reportAndClear(markerID string) {
	state := n.registry.Take(markerID)
	if state == nil {
		return
	}

	channelMessages := make(map[string][]wire.Message, len(state.ChannelMessages()))
	for link, msgs := range state.ChannelMessages() {
		channelMessages[string(link)] = msgs
	}

	report := wire.Report{
		BankID:          n.BankID,
		MarkerID:        markerID,
		Status:          state.RecordedBalance(),
		ChannelMessages: channelMessages,
	}
	log.Debugf("%s: snapshot %s complete: %s", n.BankID, markerID, spew.Sdump(report))

	if n.reporter != nil {
		n.reporter.Report(report)
	}

	if markerID == n.BankID {
		n.selfRunning = false
	}
}
