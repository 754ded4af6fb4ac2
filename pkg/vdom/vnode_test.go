package vdom

import (
	"context"
	"testing"
)

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindComponent, "Component"},
		{KindRaw, "Raw"},
		{VKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("VKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPropsClone(t *testing.T) {
	orig := Props{"a": 1}
	clone := orig.Clone()
	clone["b"] = 2

	if _, ok := orig["b"]; ok {
		t.Error("Clone should not share the underlying map")
	}

	var nilProps Props
	if got := nilProps.Clone(); got == nil || len(got) != 0 {
		t.Errorf("nil Clone() = %v, want empty map", got)
	}
}

type ctxComp struct{ got context.Context }

func (c *ctxComp) Render() *VNode { return Text("plain") }
func (c *ctxComp) RenderContext(ctx context.Context) *VNode {
	c.got = ctx
	return Text("ctx")
}

func TestContextComponentSatisfiesComponent(t *testing.T) {
	var c Component = &ctxComp{}
	cc, ok := c.(ContextComponent)
	if !ok {
		t.Fatal("ctxComp should implement ContextComponent")
	}
	if n := cc.RenderContext(context.Background()); n.Text != "ctx" {
		t.Errorf("RenderContext() text = %q", n.Text)
	}
}

func TestPropsFunc(t *testing.T) {
	var pc PropsComponent = PropsFunc(func(p Props) *VNode {
		return Textf("hello %v", p["name"])
	})
	if got := pc.RenderProps(Props{"name": "ada"}).Text; got != "hello ada" {
		t.Errorf("RenderProps() = %q", got)
	}
}

func TestMount(t *testing.T) {
	if Mount(nil) != nil {
		t.Error("Mount(nil) should be nil")
	}
	n := Mount(Func(func() *VNode { return Text("x") }))
	if n.Kind != KindComponent || n.Comp == nil {
		t.Errorf("Mount() = %+v", n)
	}
}
