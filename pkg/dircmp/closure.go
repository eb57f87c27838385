package dircmp

import (
	"context"
	"sync"
)

// BuildClosure eagerly materializes the entire comparator tree: every
// phase on this comparator, then on every descendant. Traversal is
// iterative with an explicit stack, so arbitrarily deep trees don't
// grow the call stack. Each subdirectory is visited exactly once.
func (c *Comparator) BuildClosure(ctx context.Context) error {
	stack := []*Comparator{c}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := node.phase3(ctx); err != nil {
			return err
		}
		if err := node.phase4(ctx); err != nil {
			return err
		}

		for _, child := range node.sortedSubdirs() {
			stack = append(stack, child)
		}
	}

	return nil
}

// BuildClosureParallel materializes the tree with up to workers
// subtree builders running concurrently. Sibling subtrees share no
// comparison state except the content cache, which synchronizes
// internally; results are identical to BuildClosure.
func (c *Comparator) BuildClosureParallel(ctx context.Context, workers int) error {
	if workers < 2 {
		return c.BuildClosure(ctx)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	semaphore := make(chan struct{}, workers)

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	// One goroutine per directory; the semaphore bounds how many do
	// phase work at once. A slot is held only while computing phases,
	// never while waiting on children, so saturation cannot deadlock.
	var build func(node *Comparator)
	build = func(node *Comparator) {
		defer wg.Done()

		select {
		case <-ctx.Done():
			setErr(ctx.Err())
			return
		case semaphore <- struct{}{}:
		}

		err := node.phase3(ctx)
		if err == nil {
			err = node.phase4(ctx)
		}
		<-semaphore

		if err != nil {
			setErr(err)
			return
		}

		for _, child := range node.sortedSubdirs() {
			wg.Add(1)
			go build(child)
		}
	}

	wg.Add(1)
	go build(c)
	wg.Wait()

	return firstErr
}

// Walk visits this comparator and every descendant in sorted name
// order, building phases on demand. The visitor must not mutate the
// tree; returning an error stops the walk.
func (c *Comparator) Walk(ctx context.Context, visit func(*Comparator) error) error {
	stack := []*Comparator{c}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := visit(node); err != nil {
			return err
		}

		if err := node.phase4(ctx); err != nil {
			return err
		}

		// Push in reverse so children pop in sorted order
		children := node.sortedSubdirs()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return nil
}
