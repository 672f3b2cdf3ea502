// Package server exposes memoized rendering and visual diffs over HTTP.
//
// Routes:
//
//	POST   /v1/render            {scope, text}      -> {output, data}
//	DELETE /v1/render            {scope, text}      -> 204
//	POST   /v1/extract           {scope, text}      -> {output, data}, uncached
//	POST   /v1/diff              {old, new}         -> {html, edits, stats}
//	POST   /v1/revisions/diff    {scope, old, new}  -> {html, stats}
//	GET    /healthz, /readyz, /health
//	GET    /metrics              when a metrics handler is configured
//
// With an authenticator configured, the render and extract routes need the
// "render" scope and the diff routes need "diff". Render, extract and diff
// requests share a concurrency limit; over it they get 503 with Retry-After.
//
// A revision diff renders both texts through the memo cache and diffs the
// rendered outputs, the way a revision history view compares two versions
// of a document.
package server
