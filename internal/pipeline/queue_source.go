package pipeline

import (
	"context"
	"time"

	apperrors "github.com/Ankursingh018as/public-pulse-ai/internal/errors"
	"github.com/Ankursingh018as/public-pulse-ai/internal/models"
)

// QueueSource implements Source for reports submitted through the API. The
// API handler enqueues, the pipeline drains on its poll interval.
type QueueSource struct {
	name     string
	interval time.Duration
	queue    chan models.Report
}

// NewQueueSource creates a new queue source with the given capacity
func NewQueueSource(name string, capacity int) *QueueSource {
	if capacity <= 0 {
		capacity = 1024
	}
	return &QueueSource{
		name:     name,
		interval: time.Second,
		queue:    make(chan models.Report, capacity),
	}
}

// Name returns the source name
func (q *QueueSource) Name() string {
	return q.name
}

// Interval returns the polling interval
func (q *QueueSource) Interval() time.Duration {
	return q.interval
}

// Enqueue adds a report for processing. It fails rather than blocks when
// the queue is full so the API can shed load.
func (q *QueueSource) Enqueue(report models.Report) error {
	select {
	case q.queue <- report:
		return nil
	default:
		return &apperrors.PipelineError{
			Source: q.name,
			Stage:  "enqueue",
			Err:    apperrors.ErrServiceUnavailable,
		}
	}
}

// Depth returns the number of reports waiting in the queue.
func (q *QueueSource) Depth() int {
	return len(q.queue)
}

// Fetch drains all currently queued reports without blocking.
func (q *QueueSource) Fetch(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	for {
		select {
		case <-ctx.Done():
			return reports, ctx.Err()
		case report := <-q.queue:
			reports = append(reports, report)
		default:
			return reports, nil
		}
	}
}
