package loadable

import (
	"context"
	"testing"
)

func TestCaptureRecordsInOrder(t *testing.T) {
	c := NewCapture()
	if got, _ := c.JSON(); string(got) != "[]" {
		t.Errorf("empty JSON() = %s, want []", got)
	}

	c.Record("b")
	c.Record("a")
	c.Record("b")

	got := c.Loadables()
	want := []string{"b", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("Loadables() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Loadables()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	got[0] = "mutated"
	if c.Loadables()[0] != "b" {
		t.Error("Loadables must return a copy")
	}
}

func TestCaptureScriptTag(t *testing.T) {
	c := NewCapture()
	c.Record("ui/axis,ui/chart")
	c.Record("</script>")

	tag, err := c.ScriptTag()
	if err != nil {
		t.Fatal(err)
	}
	want := `<script type="application/json" id="__preloadables__">["ui/axis,ui/chart","\u003c/script\u003e"]</script>`
	if tag != want {
		t.Errorf("ScriptTag() =\n%s\nwant\n%s", tag, want)
	}

	custom := NewCapture(WithPayloadID("boot"))
	tag, _ = custom.ScriptTag()
	if tag != `<script type="application/json" id="boot">[]</script>` {
		t.Errorf("custom ScriptTag() = %s", tag)
	}
}

func TestCaptureIDsAreUnique(t *testing.T) {
	a, b := NewCapture(), NewCapture()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("IDs %q and %q should be distinct and non-empty", a.ID(), b.ID())
	}
}

func TestCaptureContext(t *testing.T) {
	if _, ok := CaptureFromContext(context.Background()); ok {
		t.Error("background context should carry no capture")
	}

	c := NewCapture()
	ctx := WithCapture(context.Background(), c)
	got, ok := CaptureFromContext(ctx)
	if !ok || got != c {
		t.Error("capture did not round-trip through the context")
	}

	if _, ok := CaptureFromContext(WithCapture(context.Background(), nil)); ok {
		t.Error("a nil capture should not be reported")
	}
}
