package main

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned for a label that is not configured.
var ErrUnknownAction = errors.New("unknown action")

// action is one operator-triggerable control bound to a target endpoint.
type action struct {
	label     string
	resource  resource
	direction direction
	url       string
	icon      string
}

// registry maps action labels to their targets. It is read-only once built.
type registry struct {
	actions []action
	byLabel map[string]int
}

func newRegistry(cfg PanelConfig) (*registry, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	r := &registry{byLabel: make(map[string]int, len(cfg.Actions))}
	for _, a := range cfg.Actions {
		label := strings.TrimSpace(a.Label)
		r.byLabel[label] = len(r.actions)
		r.actions = append(r.actions, action{
			label:     label,
			resource:  a.Resource,
			direction: a.Direction,
			url:       a.URL,
			icon:      a.Icon,
		})
	}
	return r, nil
}

// lookup resolves a label to its action.
func (r *registry) lookup(label string) (action, error) {
	i, ok := r.byLabel[label]
	if !ok {
		return action{}, fmt.Errorf("%w: %q", ErrUnknownAction, label)
	}
	return r.actions[i], nil
}

// all returns the actions in configuration order.
func (r *registry) all() []action {
	out := make([]action, len(r.actions))
	copy(out, r.actions)
	return out
}
