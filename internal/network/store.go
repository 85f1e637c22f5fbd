package network

import "sync/atomic"

// Store holds the network snapshot currently served. Readers get a whole
// snapshot; writers replace it in one step, so in-flight searches keep the
// snapshot they started with.
type Store struct {
	current atomic.Pointer[Network]
}

// NewStore returns a store serving n, which may be nil.
func NewStore(n *Network) *Store {
	s := &Store{}
	if n != nil {
		s.current.Store(n)
	}
	return s
}

// Current returns the served snapshot, or nil before the first load.
func (s *Store) Current() *Network {
	return s.current.Load()
}

// Swap installs n and returns the snapshot it replaced.
func (s *Store) Swap(n *Network) *Network {
	return s.current.Swap(n)
}
