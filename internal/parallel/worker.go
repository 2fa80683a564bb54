// Package parallel runs independent, CPU-bound tasks on a bounded set of
// goroutines while keeping results in input order.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// Pool bounds the number of goroutines used by Map.
type Pool struct {
	workers int
}

// NewPool creates a pool. A non-positive count means runtime.NumCPU().
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the goroutine bound.
func (p *Pool) Workers() int {
	return p.workers
}

// Map calls fn for every item and returns the results in input order. Items
// not yet started when ctx is cancelled are skipped and ctx.Err() is returned.
func Map[T, R any](ctx context.Context, p *Pool, items []T, fn func(int, T) R) ([]R, error) {
	if len(items) == 0 {
		return nil, ctx.Err()
	}

	itemCh := make(chan indexedItem[T], len(items))
	resultCh := make(chan indexedResult[R], len(items))

	var wg sync.WaitGroup
	for range min(p.workers, len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				if ctx.Err() != nil {
					return
				}
				resultCh <- indexedResult[R]{index: item.index, result: fn(item.index, item.value)}
			}
		}()
	}

	for i, item := range items {
		itemCh <- indexedItem[T]{index: i, value: item}
	}
	close(itemCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]R, len(items))
	done := 0
	for r := range resultCh {
		results[r.index] = r.result
		done++
	}
	if done < len(items) {
		return results, ctx.Err()
	}
	return results, nil
}

type indexedItem[T any] struct {
	index int
	value T
}

type indexedResult[R any] struct {
	index  int
	result R
}
