// Package runid generates the correlation ID that tags one
// compile-and-run of a minilang program in the store.
package runid

import "github.com/google/uuid"

// New returns a fresh run identifier.
func New() string {
	return uuid.NewString()
}
