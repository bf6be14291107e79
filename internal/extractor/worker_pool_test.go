package extractor

import (
	"sort"
	"sync"
	"testing"
)

func TestWorkerPool_Submit(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	var counter int
	var mu sync.Mutex

	for i := 0; i < 5; i++ {
		pool.Submit(func() {
			mu.Lock()
			counter++
			mu.Unlock()
		})
	}

	pool.Wait()

	if counter != 5 {
		t.Errorf("Expected counter to be 5, got %d", counter)
	}
}

func TestWorkerPool_Concurrent(t *testing.T) {
	pool := NewWorkerPool(3)
	pool.Start()
	defer pool.Close()

	var results []int
	var mu sync.Mutex

	for i := 0; i < 10; i++ {
		value := i
		pool.Submit(func() {
			mu.Lock()
			results = append(results, value*2)
			mu.Unlock()
		})
	}

	pool.Wait()

	if len(results) != 10 {
		t.Fatalf("Expected 10 results, got %d", len(results))
	}
	sort.Ints(results)
	for i, v := range results {
		if v != i*2 {
			t.Errorf("Expected results[%d] = %d, got %d", i, i*2, v)
		}
	}
}

func TestNewWorkerPool_ZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.workers <= 0 {
		t.Errorf("Expected default worker count, got %d", pool.workers)
	}
}
