package main

// --- STATE MANAGEMENT ---

// status is the last known operational state inferred for an action.
type status int

const (
	statusUnknown status = iota
	statusPending
	statusRunning
	statusStopped
)

func (s status) String() string {
	if s < statusUnknown || s > statusStopped {
		return "invalid"
	}
	return [...]string{"unknown", "pending", "running", "stopped"}[s]
}

// Label is the decorated form used by the TUI.
func (s status) Label() string {
	if s < statusUnknown || s > statusStopped {
		return "invalid"
	}
	return [...]string{"❔ Unknown", "⏳ Pending...", "✅ Running", "🛑 Stopped"}[s]
}

// MarshalText lets snapshots encode as their string names.
func (s status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// outcome classifies one invocation attempt. The zero value means no
// attempt was made.
type outcome int

const (
	outcomeNone outcome = iota
	outcomeSuccess
	outcomeRemoteFailure
	outcomeTransportFailure
	outcomeTimeout
)

func (o outcome) String() string {
	if o < outcomeNone || o > outcomeTimeout {
		return "invalid"
	}
	return [...]string{"none", "success", "remote_failure", "transport_failure", "timeout"}[o]
}

// direction is whether an action starts or stops its resource.
type direction string

const (
	directionStart direction = "start"
	directionStop  direction = "stop"
)

// resource names the piece of infrastructure an action controls.
type resource string

const (
	resourceDatabase resource = "database"
	resourceCompute  resource = "compute"
)
