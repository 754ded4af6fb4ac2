package loadable

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoadMapWaitsForSlowestMember(t *testing.T) {
	fast := newGate("a", nil)
	slow := newGate("b", nil)

	ms := LoadMap(context.Background(), map[string]Loader[string]{
		"fast": fast.load,
		"slow": slow.load,
	})
	if !ms.Loading() {
		t.Fatal("aggregate should start loading")
	}

	fast.open()
	waitForKey(t, ms, "fast")
	if !ms.Loading() {
		t.Error("aggregate must stay loading until the slowest member settles")
	}

	slow.open()
	got, err := ms.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got["fast"] != "a" || got["slow"] != "b" {
		t.Errorf("Wait() = %v", got)
	}
	if ms.Loading() {
		t.Error("aggregate should stop loading once all members settle")
	}
}

func TestLoadMapFailsFastButKeepsLoading(t *testing.T) {
	boom := errors.New("boom")
	bad := newGate("", boom)
	slow := newGate("b", nil)

	ms := LoadMap(context.Background(), map[string]Loader[string]{
		"bad":  bad.load,
		"slow": slow.load,
	})

	bad.open()
	if _, err := ms.Wait(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Wait() error = %v, want %v", err, boom)
	}
	if !ms.Loading() {
		t.Error("a failed member must not stop the aggregate from waiting on siblings")
	}
	if !errors.Is(ms.Err(), boom) {
		t.Errorf("Err() = %v, want %v", ms.Err(), boom)
	}

	slow.open()
	waitDone[map[string]string](t, ms)
	if ms.Loading() {
		t.Error("aggregate should settle after the sibling finishes")
	}
	if ms.Loaded()["slow"] != "b" {
		t.Errorf("sibling result should still be recorded: %v", ms.Loaded())
	}
	if slow.calls.Load() != 1 {
		t.Error("sibling loader should have run exactly once")
	}
}

func TestLoadMapNilLoaderStopsRemainingKeys(t *testing.T) {
	a := newGate("a", nil)
	c := newGate("c", nil)
	a.open()
	c.open()

	ms := LoadMap(context.Background(), map[string]Loader[string]{
		"a": a.load,
		"b": nil,
		"c": c.load,
	})
	waitDone[map[string]string](t, ms)

	if !errors.Is(ms.Err(), ErrLoaderRequired) {
		t.Errorf("Err() = %v, want ErrLoaderRequired", ms.Err())
	}
	if ms.Loaded()["a"] != "a" {
		t.Error("keys before the malformed entry stay recorded")
	}
	if c.calls.Load() != 0 {
		t.Error("keys after the malformed entry must not start")
	}
	if _, err := ms.Wait(context.Background()); !errors.Is(err, ErrLoaderRequired) {
		t.Errorf("Wait() error = %v, want ErrLoaderRequired", err)
	}
}

func TestLoadMapEmpty(t *testing.T) {
	ms := LoadMap[int](context.Background(), nil)
	got, err := ms.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Wait() = %v, want empty", got)
	}
	snap := ms.Snapshot()
	if snap.Loading || !snap.HasLoaded {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestLoadMapSnapshotIsCopy(t *testing.T) {
	g := newGate(1, nil)
	g.open()
	ms := LoadMap(context.Background(), map[string]Loader[int]{"x": g.load})
	waitDone[map[string]int](t, ms)

	snap := ms.Snapshot()
	snap.Loaded["y"] = 2
	if _, ok := ms.Loaded()["y"]; ok {
		t.Error("mutating a snapshot must not affect the status")
	}
}

func waitForKey[V any](t *testing.T, ms *MapStatus[V], key string) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		for {
			if _, ok := ms.Loaded()[key]; ok {
				close(done)
				return
			}
			select {
			case <-ms.Done():
				close(done)
				return
			case <-time.After(time.Millisecond):
			}
		}
	}()
	waitSignal(t, done)
}
