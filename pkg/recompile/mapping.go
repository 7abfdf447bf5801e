package recompile

import "taskdelta/pkg/util"

// Mapping is the bidirectional index between build-relative source paths and
// the fully-qualified class names they declare. It is built from a previous
// compilation's metadata; an empty mapping signals that no incremental
// reasoning is possible.
type Mapping interface {
	// ClassNamesFor returns the class names declared by the given source
	// path, or nil when the path is unknown.
	ClassNamesFor(relativeSourcePath string) []string
	// SourcePathFor resolves a class name back to its declaring source
	// path.
	SourcePathFor(className string) (string, bool)
	// IsEmpty reports whether the mapping holds no entries.
	IsEmpty() bool
}

// MemoryMapping is an in-memory Mapping built from a source-path to
// class-names table, with the reverse index derived at construction.
type MemoryMapping struct {
	bySource map[string][]string
	byClass  map[string]string
}

// NewMemoryMapping builds a mapping from relative source path to declared
// class names. A class declared by several paths resolves to the first path
// in sorted order.
func NewMemoryMapping(bySource map[string][]string) *MemoryMapping {
	m := &MemoryMapping{
		bySource: make(map[string][]string, len(bySource)),
		byClass:  make(map[string]string),
	}
	for _, path := range util.SortedKeys(bySource) {
		names := append([]string(nil), bySource[path]...)
		m.bySource[path] = names
		for _, name := range names {
			if _, ok := m.byClass[name]; !ok {
				m.byClass[name] = path
			}
		}
	}
	return m
}

// ClassNamesFor implements Mapping.
func (m *MemoryMapping) ClassNamesFor(relativeSourcePath string) []string {
	return m.bySource[relativeSourcePath]
}

// SourcePathFor implements Mapping.
func (m *MemoryMapping) SourcePathFor(className string) (string, bool) {
	path, ok := m.byClass[className]
	return path, ok
}

// IsEmpty implements Mapping.
func (m *MemoryMapping) IsEmpty() bool { return len(m.bySource) == 0 }
