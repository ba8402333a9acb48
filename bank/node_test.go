package bank

import (
	"testing"
	"time"

	"github.com/cajova-houba/bankd/peerconn"
	"github.com/cajova-houba/bankd/storedb"
	"github.com/cajova-houba/bankd/wire"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	reports []wire.Report
}

func (r *recordingReporter) Report(rep wire.Report) {
	r.reports = append(r.reports, rep)
}

func recvWithin(t *testing.T, l *peerconn.FakeLink, d time.Duration) wire.Message {
	t.Helper()
	deadline := time.Now().Add(d)
	for !l.Pending() {
		if time.Now().After(deadline) {
			t.Fatalf("no message arrived within %s", d)
		}
		time.Sleep(time.Millisecond)
	}
	m, err := l.Recv()
	require.NoError(t, err)
	return m
}

// TestDebitHonored checks that DEBIT(30) from A to B results in a CREDIT
// reply and the expected balance shift.
func TestDebitHonored(t *testing.T) {
	aSide, bSide := peerconn.NewFakePair("A-link", "B-link")
	aSide.SetReady()
	bSide.SetReady()

	storeA := storedb.NewMemory(100)
	storeB := storedb.NewMemory(100)

	nodeB := New("B", storeB, nil, []peerconn.Link{bSide}, nil)

	require.NoError(t, aSide.Send(wire.Debit(30)))
	require.NoError(t, nodeB.dispatch(wire.Debit(30), bSide))

	reply := recvWithin(t, aSide, time.Second)
	require.True(t, reply.IsCredit())
	require.Equal(t, 30, reply.Amount)
	require.NoError(t, storeA.Credit(reply.Amount))

	balA, _ := storeA.Balance()
	balB, _ := storeB.Balance()
	require.Equal(t, 130, balA)
	require.Equal(t, 70, balB)
}

// TestDebitRefused checks that DEBIT(200) when the balance is only 100
// gets REFUSED and leaves balances untouched.
func TestDebitRefused(t *testing.T) {
	aSide, bSide := peerconn.NewFakePair("A-link", "B-link")
	bSide.SetReady()

	storeB := storedb.NewMemory(100)
	nodeB := New("B", storeB, nil, []peerconn.Link{bSide}, nil)

	require.NoError(t, nodeB.dispatch(wire.Debit(200), bSide))

	reply := recvWithin(t, aSide, time.Second)
	require.True(t, reply.IsRefused())

	bal, _ := storeB.Balance()
	require.Equal(t, 100, bal)
}

// TestListenLinkRejectsTrafficBeforeHandshake checks that DEBIT sent
// before CONNECT on a listen link gets REFUSED and the link stays not
// ready.
func TestListenLinkRejectsTrafficBeforeHandshake(t *testing.T) {
	aSide, bListen := peerconn.NewFakePair("A-link", "B-listen")

	storeB := storedb.NewMemory(100)
	nodeB := New("B", storeB, nil, nil, []peerconn.Link{bListen})

	require.NoError(t, aSide.Send(wire.Debit(10)))
	require.NoError(t, nodeB.poll())

	reply := recvWithin(t, aSide, time.Second)
	require.True(t, reply.IsRefused())
	require.False(t, bListen.Ready())
}

// TestZeroPeerSnapshotCompletesImmediately covers the zero-ready-peers
// boundary case: self-initiation with no
// peers reports a snapshot immediately without sending any MARKER.
func TestZeroPeerSnapshotCompletesImmediately(t *testing.T) {
	store := storedb.NewMemory(100)
	reporter := &recordingReporter{}
	node := New("A", store, reporter, nil, nil)

	require.NoError(t, node.Step(true))

	require.Len(t, reporter.reports, 1)
	require.Equal(t, "A", reporter.reports[0].MarkerID)
	require.Equal(t, 100, reporter.reports[0].Status)
	require.Empty(t, reporter.reports[0].ChannelMessages)
}

// TestThreeNodeRingSnapshot exercises a quiescent ring A->B->C->A, A
// self-initiates, and the MARKER propagates all the way around with no
// other traffic in flight. Every node must report exactly once, each
// with its pre-snapshot balance and no recorded channel messages.
func TestThreeNodeRingSnapshot(t *testing.T) {
	abA, abB := peerconn.NewFakePair("A->B", "B<-A")
	bcB, bcC := peerconn.NewFakePair("B->C", "C<-B")
	caC, caA := peerconn.NewFakePair("C->A", "A<-C")

	for _, l := range []*peerconn.FakeLink{abA, abB, bcB, bcC, caC, caA} {
		l.SetReady()
	}

	storeA := storedb.NewMemory(100)
	storeB := storedb.NewMemory(100)
	storeC := storedb.NewMemory(100)

	repA := &recordingReporter{}
	repB := &recordingReporter{}
	repC := &recordingReporter{}

	nodeA := New("A", storeA, repA, []peerconn.Link{abA, caA}, nil)
	nodeB := New("B", storeB, repB, []peerconn.Link{abB, bcB}, nil)
	nodeC := New("C", storeC, repC, []peerconn.Link{bcC, caC}, nil)

	// A self-initiates; then every node's loop keeps polling until the
	// MARKER has propagated fully around the ring and every node has
	// reported exactly once. No manual message threading: each poll()
	// call drains whatever that node's links have queued and reacts
	// per the dispatcher/snapshot driver under test.
	require.NoError(t, nodeA.Step(true))

	for round := 0; round < 10; round++ {
		require.NoError(t, nodeA.poll())
		require.NoError(t, nodeB.poll())
		require.NoError(t, nodeC.poll())

		if len(repA.reports) == 1 && len(repB.reports) == 1 && len(repC.reports) == 1 {
			break
		}
	}

	require.Len(t, repA.reports, 1)
	require.Equal(t, 100, repA.reports[0].Status)
	require.Empty(t, repA.reports[0].ChannelMessages["A->B"])
	require.Empty(t, repA.reports[0].ChannelMessages["A<-C"])

	require.Len(t, repB.reports, 1)
	require.Equal(t, 100, repB.reports[0].Status)

	require.Len(t, repC.reports, 1)
	require.Equal(t, 100, repC.reports[0].Status)
}

// TestPendingChannelRecordsInFlightMessage exercises the pending-channel
// mechanism directly: a node with two peer links records a message that
// arrives on the not-yet-complete channel after its own local state was
// already captured via the other channel's MARKER. X's two neighbors, P
// and Q, are driven directly through their FakeLink ends so the in-flight
// ordering (MARKER from Q first, then CREDIT and MARKER from P) is
// unambiguous rather than depending on single-channel FIFO racing a
// message against its own MARKER.
func TestPendingChannelRecordsInFlightMessage(t *testing.T) {
	linkP, peerP := peerconn.NewFakePair("X-P", "P-X")
	linkQ, peerQ := peerconn.NewFakePair("X-Q", "Q-X")
	linkP.SetReady()
	peerP.SetReady()
	linkQ.SetReady()
	peerQ.SetReady()

	storeX := storedb.NewMemory(100)
	repX := &recordingReporter{}
	nodeX := New("X", storeX, repX, []peerconn.Link{linkP, linkQ}, nil)

	// The MARKER arrives first via Q: X captures its own recorded
	// balance now (100) and pre-completes the Q channel empty, leaving
	// P pending.
	require.NoError(t, peerQ.Send(wire.Marker("M")))
	require.NoError(t, nodeX.poll())
	require.Empty(t, repX.reports)

	// A CREDIT(10) arrives on the still-pending P channel before its
	// MARKER: it must be recorded into pending_channels[P], not applied
	// as part of X's already-captured recorded balance.
	require.NoError(t, peerP.Send(wire.Credit(10)))
	require.NoError(t, nodeX.poll())
	require.Empty(t, repX.reports)

	balX, _ := storeX.Balance()
	require.Equal(t, 110, balX)

	// The MARKER finally arrives on P, completing the snapshot.
	require.NoError(t, peerP.Send(wire.Marker("M")))
	require.NoError(t, nodeX.poll())

	require.Len(t, repX.reports, 1)
	report := repX.reports[0]
	require.Equal(t, "M", report.MarkerID)
	require.Equal(t, 100, report.Status)
	require.Equal(t, []wire.Message{wire.Credit(10)}, report.ChannelMessages["X-P"])
	require.Empty(t, report.ChannelMessages["X-Q"])
}
