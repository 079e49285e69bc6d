package engine

// DependencyLink is one edge of the dependency graph: sub depends on dep.
// Links are kept in two circular doubly-linked lists (one per endpoint) so
// that insertion, iteration, and O(1) removal by reference all work
// without a secondary index.
type DependencyLink struct {
	dep *Node
	sub *Node

	prevDep *DependencyLink
	nextDep *DependencyLink

	prevSub *DependencyLink
	nextSub *DependencyLink
}
