package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key for the positions computed for a graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts are the layout parameters that change computed positions.
type LayoutKeyOpts struct {
	Engine  string  `json:"engine"`
	NodeSep float64 `json:"node_sep,omitempty"`
	Seed    int64   `json:"seed,omitempty"`
}

// GraphHash fingerprints a serialized graph.
func GraphHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DefaultKeyer produces keys of the form "layout:<engine>:<sha256>", where
// the hash covers the graph hash and every option. The engine stays
// readable so entries can be told apart on disk and in Redis.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	data, _ := json.Marshal(struct {
		Graph string        `json:"graph"`
		Opts  LayoutKeyOpts `json:"opts"`
	}{graphHash, opts})
	engine := opts.Engine
	if engine == "" {
		engine = "default"
	}
	return "layout:" + engine + ":" + GraphHash(data)
}

// ScopedKeyer namespaces another keyer, so several deployments can share
// one Redis instance. The scope is joined with a ":".
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer scopes inner (the default keyer when nil). An empty scope
// returns inner unchanged; "graphscope" and "graphscope:" are equivalent.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	scope = strings.TrimSuffix(strings.TrimSpace(scope), ":")
	if scope == "" {
		return inner
	}
	return ScopedKeyer{inner: inner, scope: scope}
}

// LayoutKey implements Keyer.
func (k ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.scope + ":" + k.inner.LayoutKey(graphHash, opts)
}
