// Package queue defines message payloads exchanged over the message broker.
package queue

// DispatchQueueName is the durable queue carrying ingestion dispatch orders.
const DispatchQueueName = "ingestion.dispatch"

// DispatchEvent asks the background worker to run the external ingestion
// call for a job.  Only the job id travels on the wire; the worker reloads
// the job from the database so a redelivered message always acts on current
// state.
type DispatchEvent struct {
	JobID      string `json:"job_id"`
	EnqueuedAt string `json:"enqueued_at"`
}
