package layout

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/graphscope/pkg/geom"
)

// Positions maps node ids to graph-space coordinates. It is the cached form
// of a computed layout.
type Positions map[string]geom.Point

// Clone returns a copy.
func (p Positions) Clone() Positions {
	out := make(Positions, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Bounds returns the extent of all positions.
func (p Positions) Bounds() (geom.Rect, bool) {
	pts := make([]geom.Point, 0, len(p))
	for _, v := range p {
		pts = append(pts, v)
	}
	b, ok := geom.Extent(pts)
	if !ok {
		return geom.Rect{}, false
	}
	return b.Rect(), true
}

// MarshalPositions serializes positions to JSON. Map keys are sorted by
// encoding/json, so equal tables produce equal bytes.
func MarshalPositions(p Positions) ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPositions deserializes JSON bytes produced by MarshalPositions.
func UnmarshalPositions(data []byte) (Positions, error) {
	var p Positions
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal positions: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("unmarshal positions: empty document")
	}
	return p, nil
}
