// Package sqlite implements the store on database/sql with the pure-Go
// modernc.org/sqlite driver. Features: status-guarded terminal writes,
// fixed-width UTC text timestamps so created_at sorts lexicographically,
// JSON itinerary storage, embedded SQL migrations. Suited to single-node
// deployments that want durability without an external database.
package sqlite
