package bank

import (
	"github.com/cajova-houba/bankd/peerconn"
	"github.com/cajova-houba/bankd/snapshot"
	"github.com/cajova-houba/bankd/storedb"
	"github.com/cajova-houba/bankd/wire"
)

// dispatch implements the bank node's message dispatch table for a message
// m received on link.
func (n *Node) dispatch(m wire.Message, link peerconn.Link) error {
	// Any non-MARKER traffic must still be recorded into every in-flight
	// snapshot for which link is not yet complete, before the message is
	// otherwise acted on.
	if !m.IsMarker() {
		n.registry.RecordForAll(snapshot.LinkHandle(link.Handle()), m)
	}

	switch m.Type {
	case wire.MsgCredit:
		return n.store.Credit(m.Amount)

	case wire.MsgDebit:
		return n.handleDebit(m.Amount, link)

	case wire.MsgMarker:
		return n.handleMarker(m, link)

	case wire.MsgRefused, wire.MsgOK, wire.MsgConnect:
		// A ready link receiving a handshake-only message; nothing to
		// do once the link is already up.
		return nil
	}
	return nil
}

func (n *Node) handleDebit(amount int, link peerconn.Link) error {
	if err := n.store.Debit(amount); err != nil {
		if err == storedb.ErrInsufficientFunds {
			log.Debugf("%s: refusing DEBIT(%d) on %s: insufficient funds", n.BankID, amount, link.Handle())
			return link.Send(wire.Refused())
		}
		return err
	}
	return link.Send(wire.Credit(amount))
}

func (n *Node) sendCredit(amount int, link peerconn.Link) {
	balance, err := n.store.Balance()
	if err != nil || balance < amount {
		_ = link.Send(wire.Refused())
		return
	}
	if err := n.store.Debit(amount); err != nil {
		_ = link.Send(wire.Refused())
		return
	}
	log.Tracef("%s: sending CREDIT(%d) on %s", n.BankID, amount, link.Handle())
	_ = link.Send(wire.Credit(amount))
}
