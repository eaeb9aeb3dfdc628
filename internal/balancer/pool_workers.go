package balancer

import (
	"context"
	"log"
	"sync"
)

// RunForwarders starts n workers draining q, each forwarding one
// Connection at a time to the pool. This is the bound on concurrent
// forwards: unlike spawning a detached goroutine per dequeued connection
// with no ceiling, the number of simultaneous forwards can never exceed n.
func RunForwarders(ctx context.Context, q *Queue, pool *Pool, n int) {
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			forwardLoop(ctx, q, pool)
		}()
	}
	wg.Wait()
}

func forwardLoop(ctx context.Context, q *Queue, pool *Pool) {
	for {
		conn, ok := q.Pop()
		if !ok {
			q.Wait(ctx)
			if ctx.Err() != nil {
				return
			}
			continue
		}

		if err := Forward(ctx, conn, pool); err != nil {
			log.Printf("balancer: forward failed: %v", err)
		}

		if ctx.Err() != nil {
			return
		}
	}
}
