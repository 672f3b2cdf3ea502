// Package observe provides observability primitives for textops operations.
//
// It is a pure instrumentation library: no transport and no I/O beyond
// exporter setup. The memo cache, the diff endpoints and the HTTP server
// wrap their work in a Middleware built from an Observer.
//
// Every operation is described by an OpMeta. Spans are named
// textops.<component>.<op>; the counters and the duration histogram carry
// the component and op as attributes. Scope is attached to spans and log
// lines only, never to metric attributes.
package observe
