// Package api provides the HTTP surface of the itinerary service: the
// browser-facing HTML views (submission form, processing poll page,
// finished itinerary, error pages) and a small JSON admin API.
//
// Views are rendered from templates embedded in the binary, so the service
// ships as a single artifact. The processing view refreshes itself until
// the job record reaches a terminal status.
//
// # Routes
//
//	GET  /                      submission form
//	GET  /generate              redirect to /
//	POST /generate              create a job, redirect to its status page
//	GET  /itineraries/:jobID    processing, itinerary, or error view
//	GET  /health                liveness + store connectivity
//	GET  /api/v1/jobs/:jobID    job record as JSON
//	GET  /api/v1/stats          per-status counts and pool counters
//
// # Usage
//
//	a := api.New(eng,
//	    api.WithLogger(logger),
//	    api.WithPinger(store),
//	)
//	srv := &http.Server{Addr: ":8080", Handler: a.Handler()}
package api
