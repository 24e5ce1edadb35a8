// Package middleware provides ContextStore decorators that add behavior
// around an existing store: at-rest encryption and PII masking.
package middleware

import (
	"github.com/plumedoc/plume/pkg/ports"
)

// Middleware allows wrapping a ContextStore to add behavior.
type Middleware func(ports.ContextStore) ports.ContextStore

// Chain applies middlewares right to left, so the first one listed is the
// outermost wrapper.
func Chain(store ports.ContextStore, mws ...Middleware) ports.ContextStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
