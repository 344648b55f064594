package models

import "time"

// RunState is the supervisor lifecycle state.
type RunState string

const (
	StateStarting   RunState = "starting"
	StateRunning    RunState = "running"
	StateRestarting RunState = "restarting"
	StateStopped    RunState = "stopped"
)

// StatusSnapshot is a read-only copy of the supervisor state for the
// health surface. Safe to hand out concurrently.
type StatusSnapshot struct {
	State     RunState
	Running   bool
	StartedAt time.Time
	Uptime    time.Duration
	LastError string
	Restarts  int64
}
