// Package vdom provides the virtual node tree rendered by loadable views.
//
// VNode is the fundamental building block representing elements, text,
// fragments, components, and raw HTML. Props holds attributes. Elements are
// created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    P(Text("Content")),
//	)
//
// # Components
//
// A Component renders to a VNode. Components that also implement
// ContextComponent receive the render pass's context.Context, which is how
// request-scoped collaborators (such as a loadable capture handle) reach
// deeply nested components without prop drilling.
package vdom
