package loadable

import (
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/vango-dev/loadable/pkg/vdom"
)

// DefaultDelay is how long a view waits before reporting PastDelay.
const DefaultDelay = 200 * time.Millisecond

// LoadingProps are handed to the Loading view while a module is not ready.
// The Loading view also decides what a failed load looks like: Error is set
// and IsLoading is false.
type LoadingProps struct {
	IsLoading bool
	PastDelay bool
	TimedOut  bool
	Error     error
}

// LoadingFunc renders the not-ready state.
type LoadingFunc func(props LoadingProps) *vdom.VNode

// RenderFunc renders a loaded module with the view's props.
type RenderFunc[T any] func(loaded T, props vdom.Props) *vdom.VNode

// Options configures a single-loader Loadable.
type Options[T any] struct {
	// Loader produces the module. Required.
	Loader Loader[T]

	// Loading renders while the module is loading or after it failed.
	// Required.
	Loading LoadingFunc

	// Render mounts the loaded module. Defaults to resolving the module's
	// default export and mounting it with the view's props.
	Render RenderFunc[T]

	// Delay before PastDelay turns true. nil means DefaultDelay; zero means
	// PastDelay is true from the first render.
	Delay *time.Duration

	// Timeout after which TimedOut turns true. nil disables it.
	Timeout *time.Duration

	// Modules lists the module identifiers this loadable pulls in. When
	// set, the loadable gets a canonical name and can be preloaded by name.
	Modules func() []string

	// Registry records the loadable. nil means Default.
	Registry *Registry
}

// MapOptions configures a Loadable over a named set of loaders.
type MapOptions[V any] struct {
	// Loaders are started together; the module is the map of their results.
	Loaders map[string]Loader[V]

	// Loading renders while any loader is pending or after one failed.
	// Required.
	Loading LoadingFunc

	// Render mounts the loaded map. Required, since a map has no default
	// rendering.
	Render RenderFunc[map[string]V]

	Delay    *time.Duration
	Timeout  *time.Duration
	Modules  func() []string
	Registry *Registry
}

// Duration returns a pointer to d, for Options.Delay and Options.Timeout.
func Duration(d time.Duration) *time.Duration {
	return &d
}

// CanonicalName sorts module identifiers and joins them with commas. The
// result keys the registry's by-name lookup and the preload payload.
func CanonicalName(modules []string) string {
	if len(modules) == 0 {
		return ""
	}
	sorted := append([]string(nil), modules...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// DefaultExporter is implemented by modules that expose a distinguished
// value to mount, the way a module's default export would.
type DefaultExporter interface {
	Default() any
}

func resolve(module any) any {
	if isNil(module) {
		return nil
	}
	if d, ok := module.(DefaultExporter); ok {
		return d.Default()
	}
	return module
}

// resolveRender is the default RenderFunc: it unwraps a default export and
// mounts whatever renderable thing it finds with props.
func resolveRender(module any, props vdom.Props) *vdom.VNode {
	module = resolve(module)
	if isNil(module) {
		return nil
	}
	switch m := module.(type) {
	case *vdom.VNode:
		return m
	case vdom.PropsComponent:
		return m.RenderProps(props)
	case func(vdom.Props) *vdom.VNode:
		return m(props)
	case vdom.Component:
		return vdom.Mount(m)
	default:
		return nil
	}
}

// isNil reports whether v is nil or holds a nil pointer, func, map, slice
// or channel.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
