// Package hydrate reads the preload payload a server render embedded in a
// page and preloads the named loadables before the page is hydrated.
//
// The payload is a script element holding a JSON array of canonical names:
//
//	<script type="application/json" id="__preloadables__">["a","b,c"]</script>
//
// It is consumed once: Extract removes the element from the document so a
// later pass cannot preload the same names again.
package hydrate

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	lerrors "github.com/vango-dev/loadable/internal/errors"
	"github.com/vango-dev/loadable/pkg/loadable"
)

// Decode parses a payload body. An empty body decodes to no names.
func Decode(data []byte) ([]string, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, lerrors.New("L040").Wrap(err)
	}
	return names, nil
}

// Find returns the payload script element with the given id, or nil. An empty
// id means loadable.PayloadID.
func Find(doc *html.Node, id string) *html.Node {
	if id == "" {
		id = loadable.PayloadID
	}
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Script && attr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if doc != nil {
		walk(doc)
	}
	return found
}

// Extract decodes the payload script and removes it from doc. found is false
// when the page carries no payload, which is not an error: there is simply
// nothing to preload.
func Extract(doc *html.Node, id string) (names []string, found bool, err error) {
	n := Find(doc, id)
	if n == nil {
		return nil, false, nil
	}

	var body strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			body.WriteString(c.Data)
		}
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}

	names, err = Decode([]byte(body.String()))
	if err != nil {
		return nil, true, err
	}
	return names, true, nil
}

// ParseDocument parses an HTML document.
func ParseDocument(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, lerrors.New("L040").WithDetail("the page is not parseable HTML").Wrap(err)
	}
	return doc, nil
}

// Parse reads an HTML document and extracts its payload. The returned
// document no longer contains the payload element.
func Parse(r io.Reader, id string) (names []string, doc *html.Node, err error) {
	doc, err = ParseDocument(r)
	if err != nil {
		return nil, nil, err
	}
	names, _, err = Extract(doc, id)
	if err != nil {
		return nil, doc, err
	}
	return names, doc, nil
}

// Preload extracts the payload from doc and preloads exactly those loadables
// in reg. It returns the names it found. A page without a payload preloads
// nothing.
func Preload(ctx context.Context, reg *loadable.Registry, doc *html.Node, id string) ([]string, error) {
	names, found, err := Extract(doc, id)
	if err != nil || !found {
		return nil, err
	}
	if reg == nil {
		reg = loadable.Default
	}
	return names, reg.PreloadByNames(ctx, names)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
