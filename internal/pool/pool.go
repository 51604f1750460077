package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultSize is the number of concurrent item operations when none is configured.
const DefaultSize = 25

// Pool gates item-level work behind a weighted semaphore shared by every caller.
type Pool struct {
	size    int64
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// Outcome summarises one batch submitted to the pool.
type Outcome struct {
	// Succeeded is the number of items whose function returned nil
	Succeeded int

	// Failed is the number of items whose function returned an error
	Failed int
}

// New creates a pool admitting at most size concurrent operations.
// perSecond limits the start rate of operations; zero or negative disables limiting.
func New(size int, perSecond float64) *Pool {
	if size <= 0 {
		size = DefaultSize
	}

	p := &Pool{
		size: int64(size),
		sem:  semaphore.NewWeighted(int64(size)),
	}

	if perSecond > 0 {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}

	return p
}

// Size returns the maximum number of concurrent operations.
func (p *Pool) Size() int {
	return int(p.size)
}

// Run calls fn for every index in [0, n) with bounded concurrency and waits for
// all admitted calls to finish. It returns the first error produced by fn.
// If ctx is cancelled before every item is admitted, the remaining items are
// not started and the context error is returned once admitted items finish.
func (p *Pool) Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) (Outcome, error) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		firstErr  error
		succeeded atomic.Int64
		failed    atomic.Int64
	)

	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			record(fmt.Errorf("context cancelled during pool acquisition: %w", err))
			break
		}
		if err := p.sem.Acquire(ctx, 1); err != nil {
			record(fmt.Errorf("context cancelled during pool acquisition: %w", err))
			break
		}

		wg.Add(1)
		go func(i int) {
			defer func() {
				p.sem.Release(1)
				wg.Done()
			}()

			if p.limiter != nil {
				if err := p.limiter.Wait(ctx); err != nil {
					failed.Add(1)
					record(fmt.Errorf("rate limiter: %w", err))
					return
				}
			}

			if err := fn(ctx, i); err != nil {
				failed.Add(1)
				record(err)
				return
			}
			succeeded.Add(1)
		}(i)
	}

	wg.Wait()

	return Outcome{
		Succeeded: int(succeeded.Load()),
		Failed:    int(failed.Load()),
	}, firstErr
}
