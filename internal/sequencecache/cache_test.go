package sequencecache

import (
	"sync"
	"testing"

	"github.com/idbuilder/worker/internal/domain"
)

func TestCacheGetMissReportsShortfall(t *testing.T) {
	c := New(10)
	_, missing, ok := c.Get("orders", 5)
	if ok {
		t.Fatalf("Get on empty cache = ok, want miss")
	}
	if missing != 5 {
		t.Fatalf("missing = %d, want 5", missing)
	}
}

func TestCachePutThenGetExact(t *testing.T) {
	c := New(10)
	c.Put("orders", domain.NewSequenceRange(1, 5, 1))

	values, _, ok := c.Get("orders", 5)
	if !ok {
		t.Fatalf("Get = miss, want hit")
	}
	want := []int64{1, 2, 3, 4, 5}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("values[%d] = %d, want %d", i, values[i], want[i])
		}
	}
}

func TestCacheGetPartialReportsRemainingCacheExhausted(t *testing.T) {
	c := New(10)
	c.Put("orders", domain.NewSequenceRange(1, 3, 1))

	_, missing, ok := c.Get("orders", 5)
	if ok {
		t.Fatalf("Get = hit, want miss (only 3 available)")
	}
	if missing != 2 {
		t.Fatalf("missing = %d, want 2", missing)
	}
}

func TestCacheConcurrentNextNeverDuplicates(t *testing.T) {
	entry := NewCachedSequence(domain.NewSequenceRange(1, 1000, 1))

	const goroutines = 20
	seen := make([][]int64, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		g := g
		go func() {
			defer wg.Done()
			for {
				v, ok := entry.Next()
				if !ok {
					return
				}
				seen[g] = append(seen[g], v)
			}
		}()
	}
	wg.Wait()

	counts := make(map[int64]int)
	total := 0
	for _, vs := range seen {
		for _, v := range vs {
			counts[v]++
			total++
		}
	}
	if total != 1000 {
		t.Fatalf("total values dispensed = %d, want 1000", total)
	}
	for v, n := range counts {
		if n != 1 {
			t.Fatalf("value %d dispensed %d times, want exactly once", v, n)
		}
	}
}

func TestCacheNeedsPrefetch(t *testing.T) {
	c := New(3)
	c.Put("orders", domain.NewSequenceRange(1, 5, 1))
	if c.NeedsPrefetch("orders") {
		t.Fatalf("NeedsPrefetch = true immediately after Put with 5 remaining, threshold 3")
	}
	if _, _, ok := c.Get("orders", 3); !ok {
		t.Fatalf("Get: want hit")
	}
	if !c.NeedsPrefetch("orders") {
		t.Fatalf("NeedsPrefetch = false with 2 remaining, threshold 3")
	}
}
