// Package store is a small reducer-driven state container.
//
// A Store holds one value per registered slice. Dispatching an Action runs
// every slice reducer under a single lock and commits the resulting state
// atomically. Reducers are declared through a Builder with exact-type cases,
// predicate matchers and an optional default case; each case reducer receives
// a private draft copy of the slice state and either mutates it in place
// (returning Mutated) or hands back a replacement value (returning Replace).
//
// Middleware wraps Dispatch the way HTTP middleware wraps a handler. The
// ListenerMiddleware runs side effects after an action has been reduced and
// the store lock released, so effects may safely dispatch again.
package store
