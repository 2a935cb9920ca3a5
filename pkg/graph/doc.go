// Package graph provides the node-link wire format for graphs loaded into a
// scene.
//
// The same format is used for graph files, HTTP request bodies and as the
// cache-key source for computed layouts.
//
// # Format
//
//	{
//	  "nodes": [{"id": "a", "x": 0, "y": 0}, {"id": "b", "label": "B"}],
//	  "edges": [{"from": "a", "to": "b"}]
//	}
//
// Node positions are optional. When every node carries x and y the static
// layout can be used directly; otherwise a computed layout fills them in.
//
// Edge ids are optional. Missing ids default to "from->to"; parallel edges
// between the same pair get a "#1", "#2", ... suffix.
//
// # Reading and Writing
//
//	g, _ := graph.ReadGraphFile("graph.json")   // File → *Graph (validated)
//	graph.WriteGraphFile(g, "out.json")         // *Graph → File
//	data, _ := graph.MarshalGraph(g)            // *Graph → []byte (sorted)
//
// Read functions assign missing edge ids and run [Graph.Validate], which
// wraps one of the package sentinels such as [ErrDuplicateNodeID] or
// [ErrUnknownNode].
package graph
