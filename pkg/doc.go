// Package pkg provides the core libraries for graphscope, an interactive
// renderer for large node-link graphs.
//
// # Overview
//
// A [scene] ties a graph, a layout and a set of modules together. The
// modules talk to each other only through the typed event topics of
// [events]; time comes from the virtual scheduler in [clock] so that the
// whole scene can be stepped deterministically by a terminal UI, an HTTP
// session or a test.
//
// # Architecture
//
// The typical data flow through a scene:
//
//	graph.json
//	     ↓
//	[graph] (validate, assign edge ids)
//	     ↓
//	[layout] (static seed or graphviz engine, cached)
//	     ↓
//	[scene] frame loop ── nodes:moved ──→ [spatial] R-tree indexes
//	     ↓                                     ↓
//	[viewport] pan/zoom ── view:reset ──→ [density] visible set + LOD radius
//	     ↓                                     ↓
//	[hittest] pointer focus                labels, halos
//
// # Main Packages
//
// [spatial] - R-tree indexes of node points and link boxes, kept in step
// with node drags and layout steps.
//
// [viewport] - Pan/zoom controller with animated transforms, fit-to-bounds
// and a debounced settle signal.
//
// [density] - Visible-set estimation and the mean screen-space spacing used
// to switch level of detail.
//
// [hittest] - Throttled pointer routing that latches the node or link under
// the cursor.
//
// [tween] - Easings over gween, tweens and the keyed Transitioner used for
// label fades and highlight glows.
//
// [graph] - The JSON node-link format: reading, validation and edge ids.
//
// [layout] - Layout providers: static seeding and graphviz engines behind a
// layout cache.
//
// ## Infrastructure
//
// [config] - TOML/YAML configuration. [cache] - Null, file and Redis layout
// caches. [errors] - Coded errors. [observability] - Hooks for metrics.
// [buildinfo] - Version stamping.
//
// # Testing
//
//	go test ./pkg/...
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/scene
// [events]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/events
// [clock]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/clock
// [spatial]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/spatial
// [viewport]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/viewport
// [density]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/density
// [hittest]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/hittest
// [tween]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/tween
// [graph]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/layout
// [config]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/config
// [cache]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/graphscope/pkg/buildinfo
package pkg
