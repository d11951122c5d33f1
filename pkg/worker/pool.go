package worker

import (
	"sync"

	"github.com/pavelc4/aether-media-bot/pkg/logger"
)

type Job func() error

// Pool runs jobs on a fixed number of goroutines. Submit blocks while the
// queue is full.
type Pool struct {
	maxWorkers int
	jobs       chan Job
	wg         sync.WaitGroup
	stopped    bool
	mu         sync.RWMutex
}

func NewPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	p := &Pool{
		maxWorkers: maxWorkers,
		jobs:       make(chan Job, maxWorkers*2),
	}
	p.start()
	return p
}

func (p *Pool) start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(id, job)
	}
}

func (p *Pool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Worker job panicked", "worker", id, "panic", r)
		}
	}()
	if err := job(); err != nil {
		logger.Error("Worker job failed", "worker", id, "error", err)
	}
}

// Submit queues job. It reports false once the pool is stopped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}

	p.jobs <- job
	return true
}

// Stop rejects new jobs and waits for queued ones to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		close(p.jobs)
		p.stopped = true
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) Size() int {
	return p.maxWorkers
}
