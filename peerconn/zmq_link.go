package peerconn

import (
	"fmt"
	"sync/atomic"

	"github.com/cajova-houba/bankd/wire"
	"github.com/lightninglabs/gozmq"
	"github.com/rogpeppe/fastuuid"
)

// recvQueueSize bounds how many raw frames a ZMQLink will buffer ahead
// of its owner actually calling Recv/RecvRaw.
const recvQueueSize = 64

// handleGen produces opaque peer-link handles. A single generator is
// shared process-wide, matching fastuuid's own "one generator, many
// calls" guidance.
var handleGen = mustNewGenerator()

func mustNewGenerator() *fastuuid.Generator {
	g, err := fastuuid.NewGenerator()
	if err != nil {
		// Only fails if the runtime's CSPRNG can't be read, which
		// would make the whole process unsafe to run anyway.
		panic(fmt.Sprintf("peerconn: cannot seed handle generator: %v", err))
	}
	return g
}

// newHandle returns a fresh opaque Handle.
func newHandle() Handle {
	id := handleGen.Next()
	return Handle(fmt.Sprintf("%x", id[:8]))
}

// ZMQLink is a Link backed by one ZeroMQ PAIR socket. A background
// goroutine pumps raw frames from the socket into a buffered channel so
// that Pending/Recv can expose the non-blocking/blocking pair the node
// loop's poll phase needs without relying on ZeroMQ's own poller.
type ZMQLink struct {
	handle Handle
	sock   *gozmq.Conn
	ready  int32 // atomic

	rawCh chan []byte
	errCh chan error
}

func newZMQLink(sock *gozmq.Conn) *ZMQLink {
	l := &ZMQLink{
		handle: newHandle(),
		sock:   sock,
		rawCh:  make(chan []byte, recvQueueSize),
		errCh:  make(chan error, 1),
	}
	go l.readPump()
	return l
}

// DialOut opens a dial-out link to addr ("host:port") and returns it
// before any handshake has run; the caller is responsible for driving
// the client-side handshake (see ClientHandshake).
func DialOut(addr string) (*ZMQLink, error) {
	sock, err := gozmq.Dial("tcp://"+addr, gozmq.Pair, 0)
	if err != nil {
		return nil, fmt.Errorf("peerconn: dial %s: %w", addr, err)
	}
	l := newZMQLink(sock)
	log.Infof("dialed out to %s as %s", addr, l.handle)
	return l, nil
}

// Listen binds a PAIR socket on port and returns the not-yet-ready link
// that will become ready once a peer completes the CONNECT/OK
// handshake against it.
func Listen(port string) (*ZMQLink, error) {
	sock, err := gozmq.Listen("tcp://*:"+port, gozmq.Pair, 0)
	if err != nil {
		return nil, fmt.Errorf("peerconn: listen on %s: %w", port, err)
	}
	l := newZMQLink(sock)
	log.Infof("listening on port %s as %s", port, l.handle)
	return l, nil
}

// readPump reads one raw frame at a time off the socket and forwards it
// to rawCh, undecoded. A read error is fatal to the link, since a
// transport failure on a ready link cannot be recovered from, and is
// surfaced once on errCh. Decoding is left to Recv/RecvRaw's callers so
// the same link can serve either the wire.Message protocol or the
// collector's raw Report/Greeting frames.
func (l *ZMQLink) readPump() {
	buf := make([]byte, 4096)
	for {
		n, err := l.sock.Read(buf)
		if err != nil {
			log.Errorf("read pump on %s failed: %v", l.handle, err)
			l.errCh <- fmt.Errorf("peerconn: read %s: %w", l.handle, err)
			return
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		l.rawCh <- frame
	}
}

// Handle implements Link.
func (l *ZMQLink) Handle() Handle { return l.handle }

// Ready implements Link.
func (l *ZMQLink) Ready() bool { return atomic.LoadInt32(&l.ready) == 1 }

// SetReady implements Link.
func (l *ZMQLink) SetReady() { atomic.StoreInt32(&l.ready, 1) }

// Pending implements Link.
func (l *ZMQLink) Pending() bool { return len(l.rawCh) > 0 || len(l.errCh) > 0 }

// Send implements Link.
func (l *ZMQLink) Send(m wire.Message) error {
	b, err := wire.Encode(m)
	if err != nil {
		return err
	}
	_, err = l.sock.Write(b)
	return err
}

// SendRaw implements Link.
func (l *ZMQLink) SendRaw(b []byte) error {
	_, err := l.sock.Write(b)
	return err
}

// Recv implements Link. It blocks until a frame is available, decodes it
// as a wire.Message, or the read pump reports a fatal transport error.
func (l *ZMQLink) Recv() (wire.Message, error) {
	select {
	case b := <-l.rawCh:
		return wire.Decode(b)
	case err := <-l.errCh:
		return wire.Message{}, err
	}
}

// RecvRaw blocks until a frame is available and returns it undecoded, for
// callers (the state collector) that speak a different JSON shape than
// wire.Message.
func (l *ZMQLink) RecvRaw() ([]byte, error) {
	select {
	case b := <-l.rawCh:
		return b, nil
	case err := <-l.errCh:
		return nil, err
	}
}

// Close implements Link.
func (l *ZMQLink) Close() error { return l.sock.Close() }
