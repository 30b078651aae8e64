package main

import (
	"errors"
	"fmt"
	"sync"
)

// ErrActionInFlight is returned when an action is invoked while a previous
// invocation of the same label is still pending.
var ErrActionInFlight = errors.New("action already in flight")

// statusStore holds the last known status of every configured action.
// Writes are last-write-wins.
type statusStore struct {
	mu        sync.RWMutex
	reg       *registry
	byLabel   map[string]status
	resources map[resource]status
}

func newStatusStore(reg *registry) *statusStore {
	s := &statusStore{
		reg:       reg,
		byLabel:   make(map[string]status, len(reg.actions)),
		resources: make(map[resource]status),
	}
	for _, a := range reg.actions {
		s.byLabel[a.label] = statusUnknown
		s.resources[a.resource] = statusUnknown
	}
	return s
}

// setPending marks label pending regardless of its prior status.
func (s *statusStore) setPending(label string) error {
	a, err := s.reg.lookup(label)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byLabel[a.label] = statusPending
	s.resources[a.resource] = statusPending
	return nil
}

// beginPending is setPending guarded against a second in-flight invocation.
func (s *statusStore) beginPending(label string) error {
	a, err := s.reg.lookup(label)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byLabel[a.label] == statusPending {
		return fmt.Errorf("%w: %q", ErrActionInFlight, label)
	}
	s.byLabel[a.label] = statusPending
	s.resources[a.resource] = statusPending
	return nil
}

// resolve records the terminal status for an outcome and returns it.
func (s *statusStore) resolve(label string, o outcome) (status, error) {
	a, err := s.reg.lookup(label)
	if err != nil {
		return statusUnknown, err
	}
	st := terminalStatus(a.direction, o)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byLabel[a.label] = st
	s.resources[a.resource] = st
	return st, nil
}

// terminalStatus maps an outcome onto the status it leaves behind. A body
// reporting null is taken to mean nothing answered, so the resource is
// assumed down.
func terminalStatus(d direction, o outcome) status {
	switch o {
	case outcomeSuccess:
		if d == directionStart {
			return statusRunning
		}
		return statusStopped
	case outcomeRemoteFailure:
		return statusStopped
	default:
		return statusUnknown
	}
}

func (s *statusStore) get(label string) (status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byLabel[label]
	return st, ok
}

// getAll returns a snapshot of every label's status.
func (s *statusStore) getAll() map[string]status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]status, len(s.byLabel))
	for k, v := range s.byLabel {
		out[k] = v
	}
	return out
}

// resourceStatus is the status most recently written by any action of r.
func (s *statusStore) resourceStatus(r resource) status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resources[r]
}
