package peerconn

import (
	"errors"
	"sync/atomic"

	"github.com/cajova-houba/bankd/wire"
)

// ErrFakeLinkClosed is returned by a FakeLink once it has been closed.
var ErrFakeLinkClosed = errors.New("peerconn: fake link closed")

// FakeLink is an in-process Link backed by a pair of buffered channels.
// It implements the same "ordered, reliable, bidirectional channel"
// contract any real transport must provide, which is all the core's
// own test suite needs — no real ZeroMQ socket is required to exercise
// handshake, dispatch, or snapshot logic.
type FakeLink struct {
	handle Handle
	out    chan wire.Message
	in     chan wire.Message
	rawOut chan []byte
	rawIn  chan []byte
	ready  int32
	closed chan struct{}
}

// NewFakePair returns two FakeLinks wired to each other: messages Sent
// on a are Recv'd from b and vice versa, and likewise for SendRaw/
// RecvRaw.
func NewFakePair(handleA, handleB Handle) (a, b *FakeLink) {
	ab := make(chan wire.Message, 64)
	ba := make(chan wire.Message, 64)
	rawAB := make(chan []byte, 64)
	rawBA := make(chan []byte, 64)

	a = &FakeLink{handle: handleA, out: ab, in: ba, rawOut: rawAB, rawIn: rawBA, closed: make(chan struct{})}
	b = &FakeLink{handle: handleB, out: ba, in: ab, rawOut: rawBA, rawIn: rawAB, closed: make(chan struct{})}
	return a, b
}

// Handle implements Link.
func (f *FakeLink) Handle() Handle { return f.handle }

// Ready implements Link.
func (f *FakeLink) Ready() bool { return atomic.LoadInt32(&f.ready) == 1 }

// SetReady implements Link.
func (f *FakeLink) SetReady() { atomic.StoreInt32(&f.ready, 1) }

// Send implements Link.
func (f *FakeLink) Send(m wire.Message) error {
	select {
	case <-f.closed:
		return ErrFakeLinkClosed
	default:
	}
	f.out <- m
	return nil
}

// Recv implements Link. It blocks until a message is available or the
// link is closed.
func (f *FakeLink) Recv() (wire.Message, error) {
	select {
	case m := <-f.in:
		return m, nil
	case <-f.closed:
		return wire.Message{}, ErrFakeLinkClosed
	}
}

// Pending implements Link.
func (f *FakeLink) Pending() bool {
	select {
	case <-f.closed:
		return true
	default:
	}
	return len(f.in) > 0
}

// SendRaw implements Link.
func (f *FakeLink) SendRaw(b []byte) error {
	select {
	case <-f.closed:
		return ErrFakeLinkClosed
	default:
	}
	f.rawOut <- b
	return nil
}

// RecvRaw blocks until a raw frame sent via the peer's SendRaw is
// available.
func (f *FakeLink) RecvRaw() ([]byte, error) {
	select {
	case b := <-f.rawIn:
		return b, nil
	case <-f.closed:
		return nil, ErrFakeLinkClosed
	}
}

// Close implements Link.
func (f *FakeLink) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}
