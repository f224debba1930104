package tracer

import (
	"context"
	"runtime"
	"sync"

	"github.com/df07/go-raytracer-bvh/pkg/accel"
	"github.com/df07/go-raytracer-bvh/pkg/core"
)

// Task is a batch of rays for one worker
type Task struct {
	ID     int        // For deterministic ordering
	Rays   []core.Ray // Rays to trace
	Light  *core.Vec3 // When set, each hit also casts a shadow ray to this point
	Out    []Result   // Shared result slice; the task writes Out[Offset:Offset+len(Rays)]
	Offset int
}

// TaskResult reports the completion of a task
type TaskResult struct {
	TaskID int
	Stats  Stats
	Error  error
}

// WorkerPool manages parallel ray queries against one accelerator
type WorkerPool struct {
	taskQueue   chan Task
	resultQueue chan TaskResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual batches
type Worker struct {
	ID          int
	accel       accel.Accelerator
	taskQueue   chan Task
	resultQueue chan TaskResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// numWorkers <= 0 uses one worker per CPU. queueSize bounds the number of
// tasks and results buffered at once.
func NewWorkerPool(a accel.Accelerator, numWorkers, queueSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize < numWorkers {
		queueSize = numWorkers
	}

	wp := &WorkerPool{
		taskQueue:   make(chan Task, queueSize),
		resultQueue: make(chan TaskResult, queueSize),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			accel:       a,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers. Workers stop early, reporting ctx.Err(), once
// ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(ctx, &wp.wg)
	}
}

// Stop gracefully shuts down all workers once the queued tasks are done
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a task to the worker pool
func (wp *WorkerPool) SubmitTask(task Task) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed task result
func (wp *WorkerPool) GetResult() (TaskResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		stats, err := w.trace(ctx, task)
		w.resultQueue <- TaskResult{
			TaskID: task.ID,
			Stats:  stats,
			Error:  err,
		}
	}
}

// trace runs one batch. Each ray writes only its own slot of task.Out, so
// batches never overlap.
func (w *Worker) trace(ctx context.Context, task Task) (Stats, error) {
	var stats Stats
	for i, ray := range task.Rays {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		hit, ok := w.accel.NearestHit(ray)
		stats.Rays++
		result := Result{Hit: ok, Index: -1, T: hit.Record.T}
		if ok {
			stats.Hits++
			result.Index = hit.Index
			result.Point = hit.Record.Point
			result.Normal = hit.Record.Normal

			if task.Light != nil {
				// Start the shadow ray just off the surface
				from := hit.Record.Point.Add(hit.Record.Normal.Multiply(core.Epsilon))
				stats.ShadowRays++
				if w.accel.Occluded(from, *task.Light) {
					stats.Occluded++
					result.Shadowed = true
				}
			}
		}

		if task.Out != nil {
			task.Out[task.Offset+i] = result
		}
	}
	return stats, nil
}
