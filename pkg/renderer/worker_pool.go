package renderer

import (
	"runtime"
	"sync"

	"github.com/df07/go-soa-raytracer/pkg/core"
)

// ColumnTask represents one image column for the worker pool
type ColumnTask struct {
	Column  int
	Sampler core.Sampler // Owned by the task, never shared
}

// ColumnResult contains the result from rendering a column
type ColumnResult struct {
	Column int
	Stats  ColumnStats
}

// WorkerPool manages parallel column rendering
type WorkerPool struct {
	taskQueue   chan ColumnTask
	resultQueue chan ColumnResult
	numWorkers  int
	render      func(ColumnTask) ColumnResult
	wg          sync.WaitGroup
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// queueSize bounds the number of tasks and results buffered at once.
func NewWorkerPool(numWorkers, queueSize int, render func(ColumnTask) ColumnResult) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = numWorkers
	}

	return &WorkerPool{
		taskQueue:   make(chan ColumnTask, queueSize),
		resultQueue: make(chan ColumnResult, queueSize),
		numWorkers:  numWorkers,
		render:      render,
	}
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.run()
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a column task to the worker pool
func (wp *WorkerPool) SubmitTask(task ColumnTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed column result
func (wp *WorkerPool) GetResult() (ColumnResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (wp *WorkerPool) run() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.resultQueue <- wp.render(task)
	}
}
