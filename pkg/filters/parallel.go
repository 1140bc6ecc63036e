package filters

import (
	"fmt"
	"sync"
)

// forEach runs fn for every index in [0, n) on up to workers goroutines and
// returns the first error, tagged with its index
func forEach(n, workers int, fn func(i int) error) error {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	type taskResult struct {
		index int
		err   error
	}

	tasks := make(chan int)
	results := make(chan taskResult)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				results <- taskResult{index: i, err: fn(i)}
			}
		}()
	}

	go func() {
		for i := 0; i < n; i++ {
			tasks <- i
		}
		close(tasks)
		wg.Wait()
		close(results)
	}()

	var firstErr error
	for res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("slice %d: %w", res.index, res.err)
		}
	}

	return firstErr
}
