package peerconn

import (
	"fmt"

	"github.com/cajova-houba/bankd/wire"
)

// ClientHandshake drives the dial-out side of the handshake: send
// CONNECT, wait for a reply, and mark the link ready only on OK. A
// non-OK reply leaves the link not ready and returns an error; the
// caller discards the link.
func ClientHandshake(l Link) error {
	if err := l.Send(wire.Connect()); err != nil {
		return fmt.Errorf("peerconn: send CONNECT: %w", err)
	}

	reply, err := l.Recv()
	if err != nil {
		return fmt.Errorf("peerconn: await handshake reply: %w", err)
	}

	if !reply.IsOK() {
		return fmt.Errorf("peerconn: bad handshake reply: %s", reply)
	}

	l.SetReady()
	log.Debugf("client handshake complete on %s", l.Handle())
	return nil
}

// ServerHandshake drives the listen side of the handshake for one
// message msg received on a not-yet-ready link l: if it is CONNECT,
// reply OK and mark the link ready; otherwise reply REFUSED and leave
// the link not ready. A bad first message is not an
// error; it is signalled on the wire and the run continues.
func ServerHandshake(l Link, msg wire.Message) error {
	if msg.IsConnect() {
		if err := l.Send(wire.OK()); err != nil {
			return fmt.Errorf("peerconn: send OK: %w", err)
		}
		l.SetReady()
		log.Debugf("server handshake complete on %s", l.Handle())
		return nil
	}

	log.Warnf("refusing non-CONNECT first message on %s: %s", l.Handle(), msg)
	return l.Send(wire.Refused())
}
