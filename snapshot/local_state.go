// Package snapshot implements the Chandy-Lamport local-state recording
// used by a bank node: one LocalState per in-flight marker id, held in a
// Registry keyed by marker id.
package snapshot

import "github.com/cajova-houba/bankd/wire"

// LinkHandle identifies a peer link for snapshot bookkeeping. Snapshots
// never reach back into the node's link table; they only ever refer to
// links by this opaque handle.
type LinkHandle string

// LocalState is one node's local recording for a single marker id: its
// own balance at the moment the snapshot began, plus the per-channel
// message logs a snapshot needs to track.
type LocalState struct {
	recordedBalance   int
	maxChannels       int
	pendingChannels   map[LinkHandle][]wire.Message
	completeChannels  map[LinkHandle][]wire.Message
	complete          bool
}

// New creates a LocalState for a snapshot whose triggering MARKER
// arrived on initiator (or the zero value "" for a self-initiated
// snapshot, which pre-completes no channel). balance is the node's
// balance at the instant of creation; maxChannels is the number of
// currently-ready peer links.
func New(balance int, initiator LinkHandle, maxChannels int) *LocalState {
	s := &LocalState{
		recordedBalance:  balance,
		maxChannels:      maxChannels,
		pendingChannels:  make(map[LinkHandle][]wire.Message),
		completeChannels: make(map[LinkHandle][]wire.Message),
	}
	if initiator != "" {
		s.completeChannels[initiator] = []wire.Message{}
	}
	s.refreshComplete()
	return s
}

// RecordedBalance returns the balance captured at snapshot creation. It
// never changes after New returns.
func (s *LocalState) RecordedBalance() int { return s.recordedBalance }

// IsComplete reports whether every expected channel has been marked
// complete.
func (s *LocalState) IsComplete() bool { return s.complete }

// AddMessage appends msg to the pending log for link, unless link is
// already complete for this snapshot: messages on
// already-completed links are not recorded.
func (s *LocalState) AddMessage(link LinkHandle, msg wire.Message) {
	if _, done := s.completeChannels[link]; done {
		return
	}
	s.pendingChannels[link] = append(s.pendingChannels[link], msg)
}

// CompleteChannel moves link's pending messages (if any) into the
// complete set and recomputes IsComplete. Calling it a second time for
// the same link is a no-op beyond re-confirming completeness, which is
// what a duplicate MARKER delivery on an already-complete channel
// needs.
func (s *LocalState) CompleteChannel(link LinkHandle) {
	if _, done := s.completeChannels[link]; done {
		s.refreshComplete()
		return
	}

	if msgs, ok := s.pendingChannels[link]; ok {
		s.completeChannels[link] = msgs
		delete(s.pendingChannels, link)
	} else {
		s.completeChannels[link] = []wire.Message{}
	}
	s.refreshComplete()
}

// HasCompleted reports whether link has already been marked complete
// for this snapshot.
func (s *LocalState) HasCompleted(link LinkHandle) bool {
	_, ok := s.completeChannels[link]
	return ok
}

func (s *LocalState) refreshComplete() {
	if len(s.completeChannels) == s.maxChannels {
		s.complete = true
	}
}

// ChannelMessages returns the recorded message log for every channel
// (pending and complete), for inclusion in a collector Report. Channels
// that never saw any traffic are included with an empty slice so a
// consistency check can still sum over them.
func (s *LocalState) ChannelMessages() map[LinkHandle][]wire.Message {
	out := make(map[LinkHandle][]wire.Message, len(s.completeChannels)+len(s.pendingChannels))
	for link, msgs := range s.completeChannels {
		out[link] = msgs
	}
	for link, msgs := range s.pendingChannels {
		out[link] = msgs
	}
	return out
}
