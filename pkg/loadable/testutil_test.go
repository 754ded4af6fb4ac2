package loadable

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/loadable/pkg/vdom"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	c       *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// Active counts timers that are neither stopped nor fired.
func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// gate is a loader that blocks until released.
type gate[T any] struct {
	release chan struct{}
	value   T
	err     error
	calls   atomic.Int32
}

func newGate[T any](value T, err error) *gate[T] {
	return &gate[T]{release: make(chan struct{}), value: value, err: err}
}

func (g *gate[T]) load(ctx context.Context) (T, error) {
	g.calls.Add(1)
	<-g.release
	return g.value, g.err
}

func (g *gate[T]) open() { close(g.release) }

func loadingView(p LoadingProps) *vdom.VNode {
	return vdom.Textf("loading isLoading=%v pastDelay=%v timedOut=%v error=%v",
		p.IsLoading, p.PastDelay, p.TimedOut, p.Error)
}

func textOf(t *testing.T, n *vdom.VNode) string {
	t.Helper()
	if n == nil {
		return "<nil>"
	}
	if n.Kind == vdom.KindComponent {
		return textOf(t, n.Comp.Render())
	}
	if n.Kind != vdom.KindText {
		t.Fatalf("expected text node, got %v", n.Kind)
	}
	return n.Text
}

func waitDone[T any](t *testing.T, f Future[T]) {
	t.Helper()
	select {
	case <-f.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for load to settle")
	}
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
}

// updates returns an onUpdate callback and a channel that receives one
// value per call.
func updates() (func(), chan struct{}) {
	ch := make(chan struct{}, 16)
	return func() { ch <- struct{}{} }, ch
}

func newTestRegistry(opts ...RegistryOption) (*Registry, *fakeClock) {
	clock := &fakeClock{}
	return NewRegistry(append([]RegistryOption{WithClock(clock)}, opts...)...), clock
}

type greeting struct{ who string }

func (g greeting) RenderProps(p vdom.Props) *vdom.VNode {
	return vdom.Text(fmt.Sprintf("hello %s %v", g.who, p["prop"]))
}
