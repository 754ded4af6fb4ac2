package loadable

import (
	"context"
	"errors"
	"testing"
)

func TestLoadResolves(t *testing.T) {
	g := newGate("module", nil)
	s := Load(context.Background(), g.load)

	snap := s.Snapshot()
	if !snap.Loading || snap.HasLoaded || snap.Err != nil {
		t.Fatalf("initial snapshot = %+v, want loading only", snap)
	}

	g.open()
	got, err := s.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got != "module" {
		t.Errorf("Wait() = %q, want module", got)
	}

	snap = s.Snapshot()
	if snap.Loading || !snap.HasLoaded || snap.Loaded != "module" || snap.Err != nil {
		t.Errorf("settled snapshot = %+v", snap)
	}
	if g.calls.Load() != 1 {
		t.Errorf("loader calls = %d, want 1", g.calls.Load())
	}
}

func TestLoadRejects(t *testing.T) {
	boom := errors.New("boom")
	g := newGate("", boom)
	s := Load(context.Background(), g.load)
	g.open()
	waitDone[string](t, s)

	if s.Loading() {
		t.Error("Loading() should be false after failure")
	}
	if _, ok := s.Loaded(); ok {
		t.Error("Loaded() should report no value after failure")
	}
	if !errors.Is(s.Err(), boom) {
		t.Errorf("Err() = %v, want %v", s.Err(), boom)
	}
	if _, err := s.Wait(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Wait() error = %v, want %v", err, boom)
	}
}

func TestLoadRecoversPanic(t *testing.T) {
	s := Load(context.Background(), func(context.Context) (int, error) {
		panic("bad module")
	})
	waitDone[int](t, s)

	if !errors.Is(s.Err(), ErrLoaderPanic) {
		t.Errorf("Err() = %v, want ErrLoaderPanic", s.Err())
	}
}

func TestLoadNilLoader(t *testing.T) {
	s := Load[int](context.Background(), nil)
	waitDone[int](t, s)

	if !errors.Is(s.Err(), ErrLoaderRequired) {
		t.Errorf("Err() = %v, want ErrLoaderRequired", s.Err())
	}
}

func TestLoadIgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := Load(ctx, func(ctx context.Context) (error, error) {
		return ctx.Err(), nil
	})
	got, err := s.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if got != nil {
		t.Errorf("loader saw cancelled context: %v", got)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	g := newGate(1, nil)
	defer g.open()
	s := Load(context.Background(), g.load)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
	if !s.Loading() {
		t.Error("an abandoned Wait must not affect the load")
	}
}

func TestSubscribe(t *testing.T) {
	g := newGate(1, nil)
	s := Load(context.Background(), g.load)

	fired := make(chan struct{}, 2)
	s.Subscribe(func() { fired <- struct{}{} })
	removed := s.Subscribe(func() { t.Error("removed subscriber must not run") })
	removed()

	g.open()
	waitSignal(t, fired)

	ran := false
	s.Subscribe(func() { ran = true })
	if !ran {
		t.Error("subscribing to a settled load should run fn immediately")
	}
}
