package loadable

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

const (
	// PayloadID is the element id of the preload payload script.
	PayloadID = "__preloadables__"

	// PayloadType is the content type of the preload payload script.
	PayloadType = "application/json"
)

// Capture records which named loadables a server render touched. Create one
// per render pass and thread it through the render with WithCapture.
type Capture struct {
	id        string
	payloadID string

	mu        sync.Mutex
	loadables []string
}

// CaptureOption configures a Capture.
type CaptureOption func(*Capture)

// WithPayloadID overrides the payload element id.
func WithPayloadID(id string) CaptureOption {
	return func(c *Capture) {
		if id != "" {
			c.payloadID = id
		}
	}
}

// NewCapture creates an empty capture.
func NewCapture(opts ...CaptureOption) *Capture {
	c := &Capture{
		id:        uuid.NewString(),
		payloadID: PayloadID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID identifies the capture in logs.
func (c *Capture) ID() string {
	return c.id
}

// Record appends a canonical name. Duplicates are kept, in render order.
func (c *Capture) Record(name string) {
	c.mu.Lock()
	c.loadables = append(c.loadables, name)
	c.mu.Unlock()
}

// Loadables returns the recorded names in render order.
func (c *Capture) Loadables() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(make([]string, 0, len(c.loadables)), c.loadables...)
}

// JSON returns the serialized payload: a JSON array of names.
func (c *Capture) JSON() ([]byte, error) {
	return json.Marshal(c.Loadables())
}

// ScriptTag returns the payload wrapped in a script element the client can
// find by id. encoding/json escapes '<', so the payload cannot close the
// script early.
func (c *Capture) ScriptTag() (string, error) {
	data, err := c.JSON()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<script type="%s" id="%s">%s</script>`, PayloadType, c.payloadID, data), nil
}

type captureKey struct{}

// WithCapture returns a context carrying c for the duration of a render.
func WithCapture(ctx context.Context, c *Capture) context.Context {
	return context.WithValue(ctx, captureKey{}, c)
}

// CaptureFromContext returns the capture threaded through ctx, if any.
func CaptureFromContext(ctx context.Context) (*Capture, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(captureKey{}).(*Capture)
	return c, ok && c != nil
}
