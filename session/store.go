// Package session owns the current session token and its persisted shadow
// copy. Exactly one token is live at a time; absence means unauthenticated.
package session

import "github.com/oneit/go-attendance-client/token"

// Store defines the interface for session token ownership. All other
// components read a snapshot via Current and never mutate the token
// directly; Adopt and Clear are reserved for the auth flow and the
// attendance pipeline reacting to backend responses.
//
// Concurrent Adopt calls are last-write-wins: only one authentication or
// attendance operation is in flight at a time in normal use, and a cleared
// session loses the next authenticated call anyway by provoking a 401.
type Store interface {
	// Current returns a snapshot of the live token, if any.
	Current() (token.Token, bool)

	// Adopt replaces the live token and persists it.
	Adopt(t token.Token) error

	// Clear removes the in-memory and persisted token.
	Clear() error
}
