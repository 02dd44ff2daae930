package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"socialmetrics/internal/service"
)

// Outcome pairs an adapter's key with the envelope its Get returned.
type Outcome struct {
	Key    string
	Result service.Result
	Err    error
}

// Coordinator runs a set of service adapters and aggregates results.
// Adapters run concurrently with each other; each adapter's own
// fetch/normalize/persist cycle stays sequential.
type Coordinator struct {
	adapters []service.Adapter
	useCache bool
}

// New creates a new Coordinator over the given adapters.
func New(adapters []service.Adapter, useCache bool) *Coordinator {
	return &Coordinator{
		adapters: adapters,
		useCache: useCache,
	}
}

// Run executes all adapters concurrently and prints outcomes to stdout as
// they arrive:
//   - Cached hit:      "KEY: OK (cached 2025-08-25)"
//   - Fresh fetch:     "KEY: OK"
//   - Upstream error:  "KEY: UPSTREAM ERROR - message"
//   - Other error:     "KEY: ERROR - error message"
func (c *Coordinator) Run(ctx context.Context) error {
	if len(c.adapters) == 0 {
		return fmt.Errorf("no adapters configured")
	}

	outcomes := make(chan Outcome, len(c.adapters))

	var wg sync.WaitGroup
	for _, a := range c.adapters {
		wg.Add(1)
		go func(adapter service.Adapter) {
			defer wg.Done()

			result, err := adapter.Get(ctx, c.useCache)
			outcomes <- Outcome{
				Key:    adapter.Key(),
				Result: result,
				Err:    err,
			}
		}(a)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for out := range outcomes {
		switch {
		case out.Err != nil && errors.Is(out.Err, service.ErrPersistence):
			// The fetch itself succeeded; report the save failure alongside it.
			fmt.Printf("%s: OK (unsaved) - %v\n", out.Key, out.Err)
		case out.Err != nil:
			fmt.Printf("%s: ERROR - %v\n", out.Key, out.Err)
		case out.Result.Error != "":
			fmt.Printf("%s: UPSTREAM ERROR - %s\n", out.Key, out.Result.Error)
		case out.Result.Cached:
			fmt.Printf("%s: OK (cached %s)\n", out.Key, out.Result.CacheDate)
		default:
			fmt.Printf("%s: OK\n", out.Key)
		}
	}

	return nil
}
