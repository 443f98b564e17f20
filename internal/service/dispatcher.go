// Package service holds background workflows that sit between the HTTP
// handlers and the repositories: the ingestion dispatcher and the admin
// bootstrap routine.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/iliyamo/document-manager/internal/model"
	"github.com/iliyamo/document-manager/internal/queue"
)

// JobStore is the slice of the ingestion repository the dispatcher needs.
type JobStore interface {
	Get(ctx context.Context, id string) (model.IngestionJob, error)
	Transition(ctx context.Context, id, from, to, message string) (bool, error)
}

// Dispatcher performs the external ingestion call for triggered jobs.
// Trigger handlers call Enqueue, which prefers handing the job to the
// message queue (at-least-once delivery, survives a process crash) and
// falls back to a fire-and-forget goroutine when the broker is down.
// Status changes go through compare-and-swap transitions so a concurrent
// webhook update is never silently overwritten.
type Dispatcher struct {
	Jobs     JobStore
	Endpoint string
	Client   *http.Client
	// Publish enqueues a dispatch order on the broker.  Nil disables the
	// broker path entirely (tests, broker-less deployments).
	Publish func(ctx context.Context, ev queue.DispatchEvent) error
}

// NewDispatcher builds a Dispatcher with a bounded HTTP client.  The 30s
// timeout is the only limit on the outbound call.
func NewDispatcher(jobs JobStore, endpoint string) *Dispatcher {
	return &Dispatcher{
		Jobs:     jobs,
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 30 * time.Second},
		Publish:  queue.PublishDispatch,
	}
}

// Enqueue schedules the dispatch for a freshly created job and returns
// immediately; the caller's HTTP response does not wait for the external
// call.  Broker first, goroutine fallback.
func (d *Dispatcher) Enqueue(job model.IngestionJob) {
	if d.Publish != nil {
		ev := queue.DispatchEvent{JobID: job.ID, EnqueuedAt: time.Now().UTC().Format(time.RFC3339)}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := d.Publish(ctx, ev)
		cancel()
		if err == nil {
			return
		}
		log.Printf("dispatch: broker unavailable for job %s, falling back to direct dispatch: %v", job.ID, err)
	}
	go func() {
		if err := d.Dispatch(context.Background(), job.ID); err != nil {
			log.Printf("dispatch: job %s: %v", job.ID, err)
		}
	}()
}

// Dispatch moves the job to RUNNING and posts it to the external worker.
// A transport error or non-2xx response marks the job FAILED with the error
// message; recording that failure is itself best-effort.  Dispatch is safe
// to call twice for the same job: the PENDING->RUNNING swap only succeeds
// once, and a redelivered message for a job that is already RUNNING repeats
// the idempotent worker call, while a job in any other state is left alone.
func (d *Dispatcher) Dispatch(ctx context.Context, jobID string) error {
	moved, err := d.Jobs.Transition(ctx, jobID, model.IngestionPending, model.IngestionRunning, "Started")
	if err != nil {
		return fmt.Errorf("mark running: %w", err)
	}
	job, err := d.Jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if !moved && job.Status != model.IngestionRunning {
		// A webhook or cancellation got there first; nothing to dispatch.
		return nil
	}

	if err := d.callWorker(ctx, job); err != nil {
		d.failJob(ctx, jobID, err.Error())
	}
	return nil
}

// callWorker posts the job details to the external ingestion endpoint.
func (d *Dispatcher) callWorker(ctx context.Context, job model.IngestionJob) error {
	payload := map[string]any{
		"jobId":         job.ID,
		"sourceType":    job.SourceType,
		"sourceRef":     job.SourceRef,
		"params":        job.Params,
		"correlationId": job.CorrelationID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ingestion worker returned %s", resp.Status)
	}
	return nil
}

// failJob records a dispatch failure on the job.  Errors from the recording
// step are swallowed after logging; the triggering request has long since
// returned and there is nobody left to report them to.
func (d *Dispatcher) failJob(ctx context.Context, jobID, message string) {
	moved, err := d.Jobs.Transition(ctx, jobID, model.IngestionRunning, model.IngestionFailed, message)
	if err != nil {
		log.Printf("dispatch: recording failure for job %s: %v", jobID, err)
		return
	}
	if !moved {
		log.Printf("dispatch: job %s left %s by another writer, failure not recorded", jobID, model.IngestionRunning)
	}
}
