package spatial_test

import (
	"fmt"

	"github.com/matzehuels/graphscope/pkg/geom"
	"github.com/matzehuels/graphscope/pkg/spatial"
)

func ExampleIndex() {
	idx := spatial.NewIndex("nodes")
	idx.Load([]spatial.Entry{
		spatial.PointEntry("a", geom.Pt(0, 0)),
		spatial.PointEntry("b", geom.Pt(100, 0)),
		spatial.PointEntry("c", geom.Pt(0, 100)),
	})

	for _, e := range idx.Nearest(geom.Pt(90, 10), 1) {
		fmt.Println("nearest:", e.ID)
	}
	for _, e := range idx.Search(geom.NormalBox(geom.Pt(-10, -10), geom.Pt(10, 110))) {
		fmt.Println("in box:", e.ID)
	}
	// Output:
	// nearest: b
	// in box: a
	// in box: c
}
