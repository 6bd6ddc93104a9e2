package jobs

import (
	"github.com/vytor/enemresultados/internal/metrics"
	"github.com/vytor/enemresultados/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	reloadPool *worker.Pool
	loader     worker.SnapshotLoader
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(reloadPool *worker.Pool, loader worker.SnapshotLoader) JobQueue {
	return &WorkerQueue{
		reloadPool: reloadPool,
		loader:     loader,
	}
}

func (q *WorkerQueue) EnqueueReload(studentID int64, period int) error {
	err := q.reloadPool.Submit(&worker.ReloadSnapshotJob{
		Loader:    q.loader,
		StudentID: studentID,
		Period:    period,
	})
	metrics.ReloadQueueDepth.Set(float64(q.reloadPool.QueueSize()))
	return err
}
