package panel

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestLoadCommitsResult(t *testing.T) {
	loader := NewLoader[string]()

	state := loader.Load(context.Background(), func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	if state.Err != nil {
		t.Fatalf("unexpected error: %v", state.Err)
	}
	if state.Data != "fresh" {
		t.Fatalf("data = %q, want fresh", state.Data)
	}
	if state.RequestID == "" {
		t.Fatal("request id must be assigned")
	}
	if state.Loading {
		t.Fatal("settled state must not be loading")
	}
}

func TestLoadCommitsError(t *testing.T) {
	loader := NewLoader[string]()
	boom := errors.New("boom")

	state := loader.Load(context.Background(), func(ctx context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(state.Err, boom) {
		t.Fatalf("err = %v, want boom", state.Err)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	loader := NewLoader[string]()

	// The first load stalls until the second has committed, simulating a
	// slow response for an outdated filter arriving late.
	firstStarted := make(chan struct{})
	secondDone := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	var firstState State[string]
	go func() {
		defer wg.Done()
		firstState = loader.Load(context.Background(), func(ctx context.Context) (string, error) {
			close(firstStarted)
			<-secondDone
			return "stale", nil
		})
	}()

	<-firstStarted
	secondState := loader.Load(context.Background(), func(ctx context.Context) (string, error) {
		return "current", nil
	})
	close(secondDone)
	wg.Wait()

	if secondState.Data != "current" {
		t.Fatalf("second load data = %q, want current", secondState.Data)
	}
	if firstState.Data != "current" {
		t.Fatalf("stale load must observe the newer state, got %q", firstState.Data)
	}
	if current := loader.Current(); current.Data != "current" {
		t.Fatalf("committed state = %q, want current", current.Data)
	}
	if loader.Current().RequestID != secondState.RequestID {
		t.Fatal("the stale load must not replace the newer request id")
	}
}

func TestCancelledLoadDoesNotCommit(t *testing.T) {
	loader := NewLoader[string]()

	loader.Load(context.Background(), func(ctx context.Context) (string, error) {
		return "kept", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	loader.Load(ctx, func(ctx context.Context) (string, error) {
		cancel() // the view navigated away mid-fetch
		return "abandoned", nil
	})

	if current := loader.Current(); current.Data != "kept" {
		t.Fatalf("state = %q, want kept", current.Data)
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	loader := NewLoader[int]()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		state := loader.Load(context.Background(), func(ctx context.Context) (int, error) {
			return i, nil
		})
		if seen[state.RequestID] {
			t.Fatalf("request id %q reused", state.RequestID)
		}
		seen[state.RequestID] = true
	}
}
