package graph

import (
	"fmt"

	"github.com/scrypster/lineage/internal/storage"
)

// boundsChecker tracks visited-node and examined-edge counts during one
// traversal and enforces the graph's resource ceilings. Depth bounding is
// handled by the traversal loops themselves; the checker is the guard
// against wide graphs and adversarial fan-out.
type boundsChecker struct {
	bounds storage.Bounds
	nodes  int
	edges  int
}

func newBoundsChecker(b storage.Bounds) *boundsChecker {
	b.Normalize()
	return &boundsChecker{bounds: b}
}

// recordNode counts a visited person, failing once the node ceiling is hit.
func (b *boundsChecker) recordNode() error {
	b.nodes++
	if b.nodes > b.bounds.MaxNodes {
		return fmt.Errorf("%w: max nodes (%d) exceeded", storage.ErrBoundsExceeded, b.bounds.MaxNodes)
	}
	return nil
}

// recordEdge counts an examined edge, failing once the edge ceiling is hit.
func (b *boundsChecker) recordEdge() error {
	b.edges++
	if b.edges > b.bounds.MaxEdges {
		return fmt.Errorf("%w: max edges (%d) exceeded", storage.ErrBoundsExceeded, b.bounds.MaxEdges)
	}
	return nil
}
