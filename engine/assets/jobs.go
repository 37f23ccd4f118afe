package assets

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/tinyfx/engine/core"
)

/**
 * @brief Describes a job to be run. Run executes on a worker goroutine;
 * OnComplete and OnFailure run later from JobSystem.Update on the goroutine
 * that calls it, so they may touch the render context.
 */
type Job struct {
	/** @brief The work itself. Required. */
	Run func() (interface{}, error)
	/** @brief Invoked with Run's result when it succeeded. Optional. */
	OnComplete func(interface{})
	/** @brief Invoked with Run's error when it failed. Optional. */
	OnFailure func(error)
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan Job
	wg         sync.WaitGroup

	mu sync.Mutex
	// callbacks of finished jobs, drained by Update
	completed []func()
	closed    bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				result, err := job.Run()
				var callback func()
				if err != nil {
					core.LogError(err.Error())
					if job.OnFailure != nil {
						callback = func() { job.OnFailure(err) }
					}
				} else if job.OnComplete != nil {
					callback = func() { job.OnComplete(result) }
				}
				if callback == nil {
					continue
				}
				js.mu.Lock()
				js.completed = append(js.completed, callback)
				js.mu.Unlock()
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Queued jobs still run; their callbacks
 * are dropped.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	js.mu.Unlock()

	close(js.jobQueue)
	js.wg.Wait()

	js.mu.Lock()
	js.completed = nil
	js.mu.Unlock()
	return nil
}

/**
 * @brief Updates the job system. Should happen once an update cycle.
 * Runs the callbacks of every job that finished since the last call.
 * @return The number of callbacks run.
 */
func (js *JobSystem) Update() int {
	js.mu.Lock()
	done := js.completed
	js.completed = nil
	js.mu.Unlock()

	for _, callback := range done {
		callback()
	}
	return len(done)
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while
 * the queue is full.
 */
func (js *JobSystem) Submit(job Job) {
	js.mu.Lock()
	closed := js.closed
	js.mu.Unlock()
	core.Assert(!closed, "job submitted after Shutdown")
	core.Assert(job.Run != nil, "job without a Run function")
	js.jobQueue <- job
}
