package redis

import "github.com/xraph/wayfarer/job"

// Redis key naming conventions for wayfarer data.
// All keys are prefixed with "wayfarer:" to avoid collisions.

const keyPrefix = "wayfarer:"

// jobKey returns the key for a job Hash: wayfarer:job:{id}
func jobKey(id string) string { return keyPrefix + "job:" + id }

// statusKey returns the Set key tracking job IDs in a status:
// wayfarer:jobs:{status}
func statusKey(status job.Status) string {
	return keyPrefix + "jobs:" + string(status)
}
