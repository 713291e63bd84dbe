//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package engine_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/pkovacs/cloudkeeper/internal/engine"
	"github.com/pkovacs/cloudkeeper/internal/scan"
)

func TestWorkQueueFIFOOrder(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	queue := engine.NewWorkQueue()

	for i := range 5 {
		queue.Enqueue(&scan.SourceItem{Path: fmt.Sprintf("/src/%d", i)})
	}

	g.Expect(queue.Len()).To(Equal(5))

	for i := range 5 {
		item, ok := queue.TryDequeue()
		g.Expect(ok).To(BeTrue())
		g.Expect(item.Path).To(Equal(fmt.Sprintf("/src/%d", i)))
	}

	g.Expect(queue.Len()).To(Equal(0))
}

func TestWorkQueueTryDequeueEmpty(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	queue := engine.NewWorkQueue()

	item, ok := queue.TryDequeue()
	g.Expect(ok).To(BeFalse())
	g.Expect(item).To(BeNil())
}

func TestWorkQueueInterleavedEnqueueDequeue(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	queue := engine.NewWorkQueue()

	queue.Enqueue(&scan.SourceItem{Path: "/src/a"})
	queue.Enqueue(&scan.SourceItem{Path: "/src/b"})

	item, ok := queue.TryDequeue()
	g.Expect(ok).To(BeTrue())
	g.Expect(item.Path).To(Equal("/src/a"))

	queue.Enqueue(&scan.SourceItem{Path: "/src/c"})

	item, _ = queue.TryDequeue()
	g.Expect(item.Path).To(Equal("/src/b"))

	item, _ = queue.TryDequeue()
	g.Expect(item.Path).To(Equal("/src/c"))

	_, ok = queue.TryDequeue()
	g.Expect(ok).To(BeFalse())
}

func TestWorkQueueConcurrentConsumers(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	queue := engine.NewWorkQueue()

	const total = 1000

	for i := range total {
		queue.Enqueue(&scan.SourceItem{Path: fmt.Sprintf("/src/%d", i)})
	}

	var consumed atomic.Int64

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for {
				if _, ok := queue.TryDequeue(); !ok {
					return
				}

				consumed.Add(1)
			}
		}()
	}

	wg.Wait()

	// Every item is consumed exactly once across all consumers
	g.Expect(consumed.Load()).To(Equal(int64(total)))
	g.Expect(queue.Len()).To(Equal(0))
}
