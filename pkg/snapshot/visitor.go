package snapshot

// Visitor receives depth-first traversal callbacks for a snapshot tree.
// PreVisitDirectory runs pre-order and may refuse descent by returning
// false; VisitFile receives file and missing leaves; PostVisitDirectory runs
// post-order with the same directory snapshot.
type Visitor interface {
	PreVisitDirectory(dir *DirSnapshot) bool
	VisitFile(s Snapshot)
	PostVisitDirectory(dir *DirSnapshot)
}

// Walk traverses the given root snapshots in order with the visitor. A call
// may cover several independent roots in one pass.
func Walk(v Visitor, roots ...Snapshot) {
	for _, root := range roots {
		root.Accept(v)
	}
}

// Index flattens snapshot trees into a map from absolute path to snapshot,
// recording every node including directories and missing leaves.
func Index(roots ...Snapshot) map[string]Snapshot {
	iv := &indexVisitor{nodes: make(map[string]Snapshot)}
	Walk(iv, roots...)
	return iv.nodes
}

type indexVisitor struct {
	nodes map[string]Snapshot
}

func (iv *indexVisitor) PreVisitDirectory(dir *DirSnapshot) bool {
	iv.nodes[dir.Path()] = dir
	return true
}

func (iv *indexVisitor) VisitFile(s Snapshot) {
	iv.nodes[s.Path()] = s
}

func (iv *indexVisitor) PostVisitDirectory(*DirSnapshot) {}
