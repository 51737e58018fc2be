// Package particles flattens particle-classification trees into ranked counts.
package particles

import (
	"sort"

	"github.com/sensioair/sensio-mcp/internal/domain"
)

// Separator joins class names into a class path.
const Separator = "/"

// Counts accumulates totals per class path and remembers the order in which
// paths were first seen.
type Counts struct {
	order  []string
	totals map[string]float64
}

func NewCounts() *Counts {
	return &Counts{totals: make(map[string]float64)}
}

func (c *Counts) add(path string, n float64) {
	if _, ok := c.totals[path]; !ok {
		c.order = append(c.order, path)
	}
	c.totals[path] += n
}

// Get returns the total for path.
func (c *Counts) Get(path string) (float64, bool) {
	n, ok := c.totals[path]
	return n, ok
}

func (c *Counts) Len() int { return len(c.order) }

// Aggregate walks tree and adds every leaf count to acc under its class path,
// prefixed by prefix. Repeated calls against the same accumulator sum.
func Aggregate(tree domain.ClassTree, acc *Counts, prefix string) {
	for _, child := range tree.Children() {
		path := child.Key
		if prefix != "" {
			path = prefix + Separator + child.Key
		}
		if child.Tree.IsLeaf() {
			acc.add(path, child.Tree.Count())
			continue
		}
		Aggregate(child.Tree, acc, path)
	}
}

// TopK ranks classes by count, highest first. Equal counts keep first-seen
// order.
func TopK(acc *Counts, k int) []domain.ParticleClass {
	ranked := make([]domain.ParticleClass, 0, len(acc.order))
	for _, path := range acc.order {
		ranked = append(ranked, domain.ParticleClass{Class: path, Count: acc.totals[path]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if k < 0 {
		k = 0
	}
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
