package snapshot

import "github.com/cajova-houba/bankd/wire"

// Registry is the set of concurrent snapshots a node hosts, keyed by
// marker id. Snapshots in the registry are fully
// independent: a message eligible for recording in several snapshots is
// recorded in every one of them.
type Registry struct {
	states map[string]*LocalState
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{states: make(map[string]*LocalState)}
}

// Has reports whether a snapshot for markerID is currently registered.
func (r *Registry) Has(markerID string) bool {
	_, ok := r.states[markerID]
	return ok
}

// Create registers a new LocalState for markerID. Callers must check
// Has first; Create unconditionally overwrites any existing entry.
func (r *Registry) Create(markerID string, balance int, initiator LinkHandle, maxChannels int) *LocalState {
	s := New(balance, initiator, maxChannels)
	r.states[markerID] = s
	return s
}

// Get returns the LocalState for markerID, or nil if none is
// registered.
func (r *Registry) Get(markerID string) *LocalState {
	return r.states[markerID]
}

// CompleteChannel marks link as complete for markerID's snapshot, if one
// exists.
func (r *Registry) CompleteChannel(markerID string, link LinkHandle) {
	if s, ok := r.states[markerID]; ok {
		s.CompleteChannel(link)
	}
}

// IsComplete reports whether markerID's snapshot exists and has
// completed.
func (r *Registry) IsComplete(markerID string) bool {
	s, ok := r.states[markerID]
	return ok && s.IsComplete()
}

// Take removes and returns the LocalState for markerID.
func (r *Registry) Take(markerID string) *LocalState {
	s := r.states[markerID]
	delete(r.states, markerID)
	return s
}

// RecordForAll appends msg, received on link, to every registered
// snapshot for which link is not yet complete: every eligible snapshot
// is updated, not just one.
func (r *Registry) RecordForAll(link LinkHandle, msg wire.Message) {
	for _, s := range r.states {
		s.AddMessage(link, msg)
	}
}

// Len returns the number of concurrently active snapshots.
func (r *Registry) Len() int { return len(r.states) }
