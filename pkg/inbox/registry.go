// Package inbox tracks the per-address session state of open inboxes: TTL setting and the
// currently selected message.
package inbox

import (
	"errors"
	"sync"
	"time"
)

// ErrNotExist indicates the inbox was never opened or has been closed.
var ErrNotExist = errors.New("inbox does not exist")

// State is a snapshot of an open inbox.
type State struct {
	Address  string
	TTL      time.Duration
	Selected string // ID of the selected message, empty if none.
	Created  time.Time
}

// Registry holds the state of every open inbox.
type Registry struct {
	mu         sync.RWMutex
	boxes      map[string]*State
	defaultTTL time.Duration
	now        func() time.Time
}

// NewRegistry creates an empty registry.  New inboxes start with defaultTTL, which must be one of
// TTLOptions.
func NewRegistry(defaultTTL time.Duration) (*Registry, error) {
	if err := ValidTTL(defaultTTL); err != nil {
		return nil, err
	}
	return &Registry{
		boxes:      make(map[string]*State),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// Open registers an inbox if it is not already open, and returns its state.  The second return
// value is true if the inbox was created by this call.
func (r *Registry) Open(address string) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.boxes[address]; ok {
		return *s, false
	}
	s := &State{Address: address, TTL: r.defaultTTL, Created: r.now()}
	r.boxes[address] = s
	return *s, true
}

// Get returns the state of an open inbox.
func (r *Registry) Get(address string) (State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.boxes[address]
	if !ok {
		return State{}, ErrNotExist
	}
	return *s, nil
}

// TTL returns the TTL of an open inbox, for the expiry scheduler.
func (r *Registry) TTL(address string) (time.Duration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.boxes[address]
	if !ok {
		return 0, false
	}
	return s.TTL, true
}

// SetTTL changes the TTL of an open inbox.
func (r *Registry) SetTTL(address string, ttl time.Duration) error {
	if err := ValidTTL(ttl); err != nil {
		return err
	}
	return r.update(address, func(s *State) { s.TTL = ttl })
}

// Select records id as the selected message.
func (r *Registry) Select(address, id string) error {
	return r.update(address, func(s *State) { s.Selected = id })
}

// ClearSelection removes any selection.
func (r *Registry) ClearSelection(address string) error {
	return r.update(address, func(s *State) { s.Selected = "" })
}

// ClearSelectionIf removes the selection only if it points at id.  Returns true if the selection
// was cleared.
func (r *Registry) ClearSelectionIf(address, id string) bool {
	cleared := false
	_ = r.update(address, func(s *State) {
		if s.Selected != "" && s.Selected == id {
			s.Selected = ""
			cleared = true
		}
	})
	return cleared
}

// Close forgets an inbox.  Returns false if it was not open.
func (r *Registry) Close(address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.boxes[address]
	delete(r.boxes, address)
	return ok
}

// Addresses lists the open inboxes in no particular order.
func (r *Registry) Addresses() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addrs := make([]string, 0, len(r.boxes))
	for a := range r.boxes {
		addrs = append(addrs, a)
	}
	return addrs
}

func (r *Registry) update(address string, f func(s *State)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.boxes[address]
	if !ok {
		return ErrNotExist
	}
	f(s)
	return nil
}
