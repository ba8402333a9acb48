// Package peerconn implements the duplex Peer Link abstraction: a
// stable-handle channel to one neighbor bank, carrying wire.Message
// frames, plus the CONNECT/OK handshake used to bring it up. The
// default transport is a ZeroMQ PAIR socket per link; tests use an
// in-process fake that satisfies the same Link interface.
package peerconn

import "github.com/cajova-houba/bankd/wire"

// Handle is the stable, opaque identifier of a Peer Link for the
// lifetime of the owning node. Snapshots and the node loop refer to
// links only by Handle, never by reaching back into a shared link
// table.
type Handle string

// Link is one full-duplex channel to a neighbor. Messages are delivered
// in order; a transport failure on a ready link is fatal to the
// enclosing run.
type Link interface {
	// Handle returns this link's stable identifier.
	Handle() Handle

	// Send writes one message to the link.
	Send(wire.Message) error

	// Recv blocks until one message is available, then returns it.
	Recv() (wire.Message, error)

	// SendRaw writes a pre-encoded JSON frame to the link as-is,
	// bypassing the wire.Message envelope. The Collector Reporter
	// uses this for the greeting and Report records,
	// which are not shaped like wire.Message.
	SendRaw([]byte) error

	// Pending reports whether Recv would return immediately without
	// blocking. The node loop's poll phase uses this to
	// multiplex a bounded wait across every link without blocking on
	// any single one.
	Pending() bool

	// Ready reports whether the handshake has completed and the link
	// may be used for ordinary traffic.
	Ready() bool

	// SetReady flips Ready() to true. Called by the handshake logic in
	// this package once CONNECT/OK has been exchanged.
	SetReady()

	// Close releases the underlying socket.
	Close() error
}
