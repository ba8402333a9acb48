// Package bank implements the bank node's message-processing loop: the
// poll/generate/trigger cycle, the message dispatcher, and the glue
// that drives the snapshot package through its Chandy-Lamport
// transitions.
package bank

import (
	"math/rand"
	"time"

	"github.com/cajova-houba/bankd/peerconn"
	"github.com/cajova-houba/bankd/snapshot"
	"github.com/cajova-houba/bankd/storedb"
	"github.com/cajova-houba/bankd/wire"
)

const (
	// pollTimeout bounds how long one poll phase waits for traffic.
	pollTimeout = 10 * time.Millisecond

	// generationChance is the 1-in-5 odds that a generation phase
	// actually emits synthetic traffic.
	generationChance = 5

	// minAmount and maxAmount bound synthetic traffic uniformly.
	minAmount = 10000
	maxAmount = 50000
)

// Reporter forwards a completed snapshot to the state collector. It is
// its own interface so the node loop's tests don't need a real
// collector link.
type Reporter interface {
	Report(r wire.Report)
}

// Node is one bank's runtime state: its id, balance store, peer links,
// snapshot registry, and self-initiation flag.
type Node struct {
	BankID string

	store    storedb.Store
	reporter Reporter
	rng      *rand.Rand

	peers        map[peerconn.Handle]peerconn.Link
	listenLinks  map[peerconn.Handle]peerconn.Link // not-yet-ready listen links
	registry     *snapshot.Registry
	selfRunning  bool
}

// New creates a Node. peers are already-handshaken, ready links
// (the node's established peer link set); listenLinks are freshly bound,
// not-yet-ready listen links awaiting their first CONNECT.
func New(bankID string, store storedb.Store, reporter Reporter, peers, listenLinks []peerconn.Link) *Node {
	n := &Node{
		BankID:      bankID,
		store:       store,
		reporter:    reporter,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		peers:       make(map[peerconn.Handle]peerconn.Link, len(peers)),
		listenLinks: make(map[peerconn.Handle]peerconn.Link, len(listenLinks)),
		registry:    snapshot.NewRegistry(),
	}
	for _, p := range peers {
		n.peers[p.Handle()] = p
	}
	for _, l := range listenLinks {
		n.listenLinks[l.Handle()] = l
	}
	return n
}

// readyPeers returns every peer link currently usable for ordinary
// traffic: the dial-out peers plus any listen link that has completed
// its handshake.
func (n *Node) readyPeers() []peerconn.Link {
	out := make([]peerconn.Link, 0, len(n.peers)+len(n.listenLinks))
	for _, p := range n.peers {
		out = append(out, p)
	}
	for _, l := range n.listenLinks {
		if l.Ready() {
			out = append(out, l)
		}
	}
	return out
}

// allLinks returns every link the node currently holds, ready or not,
// for the purposes of the poll phase's input multiplexing.
func (n *Node) allLinks() []peerconn.Link {
	out := make([]peerconn.Link, 0, len(n.peers)+len(n.listenLinks))
	for _, p := range n.peers {
		out = append(out, p)
	}
	for _, l := range n.listenLinks {
		out = append(out, l)
	}
	return out
}

// isListenNotReady reports whether link is one of the listen links that
// has not yet completed its handshake.
func (n *Node) isListenNotReady(link peerconn.Link) bool {
	l, ok := n.listenLinks[link.Handle()]
	return ok && l == link && !link.Ready()
}

// Step runs exactly one iteration of the node loop: trigger phase, poll
// phase, generation phase, in that fixed order: the trigger phase always
// runs once per iteration before the poll phase.
func (n *Node) Step(triggered bool) error {
	if triggered && !n.selfRunning {
		n.selfRunning = true
		if err := n.handleMarker(wire.Marker(n.BankID), nil); err != nil {
			return err
		}
	}

	if err := n.poll(); err != nil {
		return err
	}

	n.generate()
	return nil
}

// poll implements the node loop's poll phase.
func (n *Node) poll() error {
	links := n.allLinks()
	ready := peerconn.PollReadable(links, pollTimeout)

	for _, link := range ready {
		msg, err := link.Recv()
		if err != nil {
			return err // transport failure on a ready link is fatal
		}

		if n.isListenNotReady(link) {
			if err := peerconn.ServerHandshake(link, msg); err != nil {
				return err
			}
			continue
		}

		if err := n.dispatch(msg, link); err != nil {
			return err
		}
	}
	return nil
}

// generate implements the node loop's generation phase.
func (n *Node) generate() {
	peers := n.readyPeers()
	if len(peers) == 0 {
		return
	}

	if n.rng.Intn(generationChance) != 0 {
		return
	}

	target := peers[n.rng.Intn(len(peers))]
	amount := minAmount + n.rng.Intn(maxAmount-minAmount+1)

	balance, err := n.store.Balance()
	if err != nil {
		return
	}

	if n.rng.Intn(2) == 0 && balance >= amount {
		n.sendCredit(amount, target)
	} else {
		_ = target.Send(wire.Debit(amount))
	}
}
