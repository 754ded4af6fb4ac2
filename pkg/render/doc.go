// Package render provides server-side rendering (SSR) of vdom trees.
//
// The render package converts VNode trees into HTML, handling text and
// attribute escaping, void elements and boolean attributes, and full page
// documents with head, body and script injection.
//
// # Basic Usage
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(ctx, node)
//
// Every render call takes a context.Context. Components implementing
// vdom.ContextComponent receive it, so request-scoped collaborators travel
// with the render pass instead of through props. A loadable capture handle
// is threaded this way:
//
//	capture := loadable.NewCapture()
//	ctx := loadable.WithCapture(r.Context(), capture)
//	err := renderer.RenderPage(ctx, w, render.PageData{
//	    Body:         body,
//	    Preloadables: capture,
//	})
//
// Preloadables is read after the body has rendered, so the payload lists
// exactly the loadables this pass touched.
package render
