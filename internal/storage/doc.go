// Package storage is the durable home of meal records.
//
// It currently supports:
//   - Meal CRUD (the lifecycle manager is the only writer)
//   - Alert dedup state (so a restart inside a due minute doesn't re-alert)
package storage
