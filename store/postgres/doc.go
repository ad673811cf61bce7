// Package postgres implements the store using pgx/v5 with raw SQL.
// Features: status-guarded terminal writes, database-assigned timestamps
// via DEFAULT NOW(), JSONB itinerary storage, embedded SQL migrations.
package postgres
