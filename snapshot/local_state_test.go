package snapshot

import (
	"testing"

	"github.com/cajova-houba/bankd/wire"
	"github.com/stretchr/testify/require"
)

func TestNewWithInitiatorPreCompletes(t *testing.T) {
	s := New(100, LinkHandle("peer-b"), 2)
	require.False(t, s.IsComplete())
	require.True(t, s.HasCompleted(LinkHandle("peer-b")))
}

func TestNewSelfInitiatedHasNoPreCompletedChannel(t *testing.T) {
	s := New(100, "", 2)
	require.False(t, s.IsComplete())
	require.False(t, s.HasCompleted(LinkHandle("peer-b")))
}

func TestZeroMaxChannelsCompletesImmediately(t *testing.T) {
	// A node with no ready peers completes on
	// creation without sending any MARKER.
	s := New(100, "", 0)
	require.True(t, s.IsComplete())
}

func TestMessagesRecordedOnlyBeforeMarker(t *testing.T) {
	s := New(100, "", 2)

	s.AddMessage("peer-a", wire.Credit(10))
	s.CompleteChannel("peer-a")
	s.AddMessage("peer-a", wire.Credit(999)) // arrives after marker, not recorded

	msgs := s.ChannelMessages()
	require.Equal(t, []wire.Message{wire.Credit(10)}, msgs["peer-a"])
}

func TestCompleteChannelWithNoPendingMessages(t *testing.T) {
	s := New(100, "", 1)
	s.CompleteChannel("peer-a")
	require.True(t, s.IsComplete())
	require.Equal(t, []wire.Message{}, s.ChannelMessages()["peer-a"])
}

func TestDuplicateMarkerIsIdempotent(t *testing.T) {
	s := New(100, "", 1)
	s.CompleteChannel("peer-a")
	require.True(t, s.IsComplete())
	s.CompleteChannel("peer-a")
	require.True(t, s.IsComplete())
}

func TestRegistryRecordForAllRespectsPerSnapshotCompletion(t *testing.T) {
	r := NewRegistry()
	r.Create("A", 100, "", 2)
	r.Create("B", 100, LinkHandle("peer-x"), 2)

	r.RecordForAll(LinkHandle("peer-x"), wire.Credit(5))

	// Snapshot A hasn't seen peer-x complete, so it records the message.
	require.Equal(t, []wire.Message{wire.Credit(5)}, r.Get("A").ChannelMessages()["peer-x"])

	// Snapshot B already completed peer-x at creation, so it does not.
	_, pending := r.Get("B").ChannelMessages()["peer-x"]
	require.True(t, pending) // completeChannels entry still exists (empty slice)
	require.Empty(t, r.Get("B").ChannelMessages()["peer-x"])
}

func TestRegistryTakeRemoves(t *testing.T) {
	r := NewRegistry()
	r.Create("A", 100, "", 0)
	require.True(t, r.IsComplete("A"))

	s := r.Take("A")
	require.NotNil(t, s)
	require.False(t, r.Has("A"))
}
