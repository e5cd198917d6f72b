// Package service orchestrates the task intelligence engine's operations:
// dependency mutations guarded for cycle safety, recurring instance
// generation, and priority suggestion batches. Services coordinate stores
// and the pure domain algorithms; they hold no state of their own.
package service

import "github.com/rowanvale/taskengine/internal/store"

// runInTransaction is indirected so orchestration tests can run the
// transactional paths against in-memory stores.
var runInTransaction = store.RunInTransaction
