package vdom

import "strings"

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// AttrOf creates an attribute that has no dedicated helper.
func AttrOf(key string, value any) Attr { return attr(key, value) }

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return attr("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Key sets the reconciliation key.
func Key(key string) Attr { return attr("key", key) }

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Src sets the src attribute.
func Src(src string) Attr { return attr("src", src) }

// Href sets the href attribute.
func Href(href string) Attr { return attr("href", href) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaBusy sets the aria-busy attribute.
func AriaBusy(busy bool) Attr { return attr("aria-busy", busy) }

// AriaLive sets the aria-live attribute.
func AriaLive(mode string) Attr { return attr("aria-live", mode) }

// Hidden sets the hidden boolean attribute.
func Hidden(hidden bool) Attr { return attr("hidden", hidden) }
