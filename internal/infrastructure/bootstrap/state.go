// Package bootstrap prepares the runtime environment before a server or worker
// starts: static asset directories, first-run schema seeding and pending
// migrations.
package bootstrap

import (
	"sync/atomic"
	"time"
)

// State is a step of the bootstrap sequence
type State int

// Bootstrap states in the order they are reached
const (
	StateNotProbed State = iota
	StateProbed
	StateSeeded
	StateMigrationsChecked
	StateReady
)

func (s State) String() string {
	switch s {
	case StateNotProbed:
		return "not_probed"
	case StateProbed:
		return "probed"
	case StateSeeded:
		return "seeded"
	case StateMigrationsChecked:
		return "migrations_checked"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Report records what a bootstrap run did
type Report struct {
	States []State

	AssetsCreated   bool
	TemplatesCopied bool

	Fresh    bool
	ProbeErr error
	Seeded   bool
	SeedErr  error

	PendingMigrations []uint
	MigrationErr      error

	Duration time.Duration
}

func newReport() *Report {
	return &Report{States: []State{StateNotProbed}}
}

func (r *Report) advance(s State) {
	r.States = append(r.States, s)
}

// State returns the last state reached
func (r *Report) State() State {
	if len(r.States) == 0 {
		return StateNotProbed
	}
	return r.States[len(r.States)-1]
}

// AuthOptions are the live authentication options shared with the API.
// Seeding runs with verification disabled and turns it back on when done.
type AuthOptions struct {
	requireVerification atomic.Bool
}

// NewAuthOptions creates auth options with the given verification setting
func NewAuthOptions(requireVerification bool) *AuthOptions {
	o := &AuthOptions{}
	o.requireVerification.Store(requireVerification)
	return o
}

// RequireVerification reports whether new accounts must verify their email
func (o *AuthOptions) RequireVerification() bool {
	return o.requireVerification.Load()
}

// SetRequireVerification updates the verification setting
func (o *AuthOptions) SetRequireVerification(v bool) {
	o.requireVerification.Store(v)
}
