// Package redis implements store.Store using Redis. Each job is stored as
// a Hash, and a Set per status tracks which jobs are currently processing,
// completed, or failed. Hash and Set writes go through a single TxPipeline
// so a job never appears in a status set without its record, and timestamps
// come from the Redis server clock rather than the application host.
//
// The caller owns the client lifecycle; the store never closes it. Pass the
// client through the constructor:
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	s := redis.New(client)
//	if err := s.Ping(ctx); err != nil { ... }
package redis
