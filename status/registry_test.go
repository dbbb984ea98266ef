package status

import (
	"sync"
	"testing"
)

func TestMetricMapReturnsStablePointer(t *testing.T) {
	r := NewRegistry()
	a := r.Ints.Get(PathRequests)
	b := r.Ints.Get(PathRequests)
	if a != b {
		t.Error("Expected cached pointer for repeated Get")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Ints.Get(PathRequests).Add(1)
			}
		}()
	}
	wg.Wait()
	if got := a.Load(); got != 800 {
		t.Errorf("Expected 800, got %d", got)
	}
}

func TestSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get(WallPlaced).Store(3)
	r.Floats.Get(PathLastMillis).Set(1.5)
	r.Strings.Get(LastRejected).Store("water")

	snap := r.Snapshot()
	if len(snap) != 3 || r.TotalCount() != 3 {
		t.Fatalf("Expected 3 entries, got %v", snap)
	}
	if snap[WallPlaced] != int64(3) || snap[PathLastMillis] != 1.5 || snap[LastRejected] != "water" {
		t.Errorf("Unexpected snapshot %v", snap)
	}
}

func TestAtomicStringTruncates(t *testing.T) {
	var s AtomicString
	if s.Load() != "" {
		t.Error("Expected zero value to be empty")
	}
	long := make([]byte, MaxStringLen+10)
	for i := range long {
		long[i] = 'x'
	}
	s.Store(string(long))
	if len(s.Load()) != MaxStringLen {
		t.Errorf("Expected %d chars, got %d", MaxStringLen, len(s.Load()))
	}
}
