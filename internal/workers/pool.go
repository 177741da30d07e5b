// Package workers runs independent jobs on a bounded set of goroutines.
package workers

import "sync"

// DefaultWorkers is used when a pool is created with a non-positive size.
const DefaultWorkers = 4

// WorkerPool bounds the number of goroutines used for a batch of jobs.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	return &WorkerPool{
		numWorkers: numWorkers,
	}
}

// Size returns the number of workers.
func (wp *WorkerPool) Size() int {
	return wp.numWorkers
}

type jobItem[T any] struct {
	index int
	input T
}

type resultItem[R any] struct {
	index  int
	output R
}

// Map applies fn to every input on the pool.
// Results are returned in input order, so the output does not depend on scheduling.
func Map[T, R any](wp *WorkerPool, inputs []T, fn func(index int, input T) R) []R {
	n := len(inputs)
	if n == 0 {
		return []R{}
	}

	jobs := make(chan jobItem[T], n)
	results := make(chan resultItem[R], n)

	numActualWorkers := wp.numWorkers
	if n < numActualWorkers {
		numActualWorkers = n
	}

	var wg sync.WaitGroup
	for i := 0; i < numActualWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- resultItem[R]{index: job.index, output: fn(job.index, job.input)}
			}
		}()
	}

	for idx, input := range inputs {
		jobs <- jobItem[T]{index: idx, input: input}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]R, n)
	for result := range results {
		out[result.index] = result.output
	}
	return out
}
