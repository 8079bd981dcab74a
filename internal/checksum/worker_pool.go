package checksum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrPoolStopped is returned by Submit after Stop
var ErrPoolStopped = errors.New("worker pool is stopped")

// Job asks for the digest of one file. Open receives the job context, which
// expires after Timeout when one is set.
type Job struct {
	Path      string
	Algorithm Algorithm
	Open      func(ctx context.Context) (io.ReadCloser, error)
	Timeout   time.Duration
}

// Result is the outcome of a Job
type Result struct {
	Job      *Job
	Digest   string
	Bytes    int64
	Duration time.Duration
	Err      error
}

// Totals counts the work a pool has finished
type Totals struct {
	Hashed int64
	Failed int64
	Bytes  int64
}

// WorkerPool hashes files on a fixed number of goroutines
type WorkerPool struct {
	size    int
	queue   chan *Job
	results chan *Result
	done    chan struct{}
	wg      sync.WaitGroup
	stop    sync.Once

	hashed atomic.Int64
	failed atomic.Int64
	bytes  atomic.Int64
}

// NewWorkerPool creates a pool of size workers. Call Start before Submit
// can make progress.
func NewWorkerPool(size int) *WorkerPool {
	size = max(size, 1)
	return &WorkerPool{
		size:    size,
		queue:   make(chan *Job, size*2),
		results: make(chan *Result, size*2),
		done:    make(chan struct{}),
	}
}

// Start launches the workers. Every job context derives from ctx, so
// cancelling it aborts hashes in flight.
func (p *WorkerPool) Start(ctx context.Context) {
	p.wg.Add(p.size)
	for range p.size {
		go func() {
			defer p.wg.Done()
			for job := range p.queue {
				p.publish(p.hash(ctx, job))
			}
		}()
	}
}

func (p *WorkerPool) hash(ctx context.Context, job *Job) *Result {
	start := time.Now()
	result := &Result{Job: job}
	defer func() {
		result.Duration = time.Since(start)
		if result.Err != nil {
			p.failed.Add(1)
			return
		}
		p.hashed.Add(1)
		p.bytes.Add(result.Bytes)
	}()

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	rc, err := job.Open(ctx)
	if err != nil {
		result.Err = fmt.Errorf("failed to open %s: %w", job.Path, err)
		return result
	}
	defer rc.Close()

	src := &meteredReader{ctx: ctx, r: rc}
	digest, err := Compute(job.Algorithm, src)
	result.Bytes = src.n

	switch {
	case err != nil && ctx.Err() != nil:
		result.Err = fmt.Errorf("timeout or cancelled hashing %s after %d bytes: %w", job.Path, src.n, ctx.Err())
	case err != nil:
		result.Err = err
	default:
		result.Digest = digest
	}
	return result
}

func (p *WorkerPool) publish(result *Result) {
	select {
	case p.results <- result:
	case <-p.done:
	}
}

// Submit queues job, blocking while the queue is full. It gives up when ctx
// ends or the pool is stopped.
func (p *WorkerPool) Submit(ctx context.Context, job *Job) error {
	select {
	case <-p.done:
		return ErrPoolStopped
	default:
	}

	select {
	case p.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrPoolStopped
	}
}

// Results yields one Result per submitted job until the pool is stopped
func (p *WorkerPool) Results() <-chan *Result {
	return p.results
}

// Totals returns counters for the jobs finished so far
func (p *WorkerPool) Totals() Totals {
	return Totals{Hashed: p.hashed.Load(), Failed: p.failed.Load(), Bytes: p.bytes.Load()}
}

// Stop discards unread results, waits for the workers and closes Results.
// Submit must not run concurrently with Stop.
func (p *WorkerPool) Stop() {
	p.stop.Do(func() {
		close(p.done)
		close(p.queue)
		p.wg.Wait()
		close(p.results)
	})
}

// meteredReader stops at context expiry and counts bytes read
type meteredReader struct {
	ctx context.Context
	r   io.Reader
	n   int64
}

func (m *meteredReader) Read(b []byte) (int, error) {
	if err := m.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := m.r.Read(b)
	m.n += int64(n)
	return n, err
}
