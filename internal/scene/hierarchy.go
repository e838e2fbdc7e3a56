package scene

import (
	"sort"

	"github.com/mage-engine/mage/internal/entity"
	"github.com/mage-engine/mage/internal/universe"
)

type flagged interface {
	IsHelper() bool
	IsSerializable() bool
}

type parented interface {
	Parent() string
}

type typed interface {
	EntityType() entity.Type
}

// Node is one entry of the scene hierarchy.
type Node struct {
	UUID     string
	Name     string
	Type     entity.Type
	Children []Node
}

// Hierarchy returns the tree of serializable, non-helper elements. Roots are
// elements without a parent; children are attached under their parent's
// uuid. Siblings are sorted by name.
func (s *Scene) Hierarchy() []Node {
	children := make(map[string][]universe.Element)
	var roots []universe.Element
	s.universe.Each(func(e universe.Element) {
		if f, ok := e.(flagged); ok && (f.IsHelper() || !f.IsSerializable()) {
			return
		}
		parent := ""
		if p, ok := e.(parented); ok {
			parent = p.Parent()
		}
		if parent == "" {
			roots = append(roots, e)
			return
		}
		children[parent] = append(children[parent], e)
	})
	return buildNodes(roots, children)
}

func buildNodes(elems []universe.Element, children map[string][]universe.Element) []Node {
	if len(elems) == 0 {
		return nil
	}
	sort.Slice(elems, func(i, j int) bool { return elems[i].Name() < elems[j].Name() })
	nodes := make([]Node, 0, len(elems))
	for _, e := range elems {
		n := Node{UUID: e.UUID(), Name: e.Name()}
		if t, ok := e.(typed); ok {
			n.Type = t.EntityType()
		}
		n.Children = buildNodes(children[e.UUID()], children)
		nodes = append(nodes, n)
	}
	return nodes
}
