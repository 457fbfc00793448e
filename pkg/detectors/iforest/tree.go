package iforest

import (
	"math"

	"github.com/hed1ad/syscallguard/pkg/errors"
	"github.com/hed1ad/syscallguard/pkg/features"
	"github.com/hed1ad/syscallguard/pkg/random"
)

// eulerGamma is the Euler-Mascheroni constant.
const eulerGamma = 0.5772156649

const noChild = -1

// Tree is a single isolation tree. Nodes live in one slice and refer to their
// children by index; the root is nodes[0]. A tree built from zero samples has no nodes.
type Tree struct {
	nodes    []node
	maxDepth int
}

// node is a node in the isolation tree.
type node struct {
	leaf bool

	// Split parameters (internal nodes only)
	attribute int
	value     int

	// number of training samples that reached this node
	size int

	left  int
	right int
}

// CFactor returns the average path length of an unsuccessful search in a random
// binary search tree of n nodes: 2*H(n-1) - 2*(n-1)/n, with H(k) ~ ln(k) + gamma.
func CFactor(n int) float64 {
	if n <= 1 {
		return 0
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}

// BuildTree grows an isolation tree over samples. Every sample must have the same
// dimensionality.
func BuildTree(samples []features.Vector, maxDepth int, rng random.Source) (*Tree, error) {
	if maxDepth < 0 {
		return nil, errors.InvalidInput("build tree", "max depth must not be negative, got %d", maxDepth)
	}

	t := &Tree{maxDepth: maxDepth}
	if len(samples) == 0 {
		return t, nil
	}

	d := features.Width(samples)
	if err := features.CheckDimensions("build tree", samples, d); err != nil {
		return nil, err
	}

	b := &builder{samples: samples, dims: d, maxDepth: maxDepth, rng: rng}
	idx := make([]int, len(samples))
	for i := range idx {
		idx[i] = i
	}
	b.grow(idx, 0)
	t.nodes = b.nodes

	return t, nil
}

type builder struct {
	samples  []features.Vector
	dims     int
	maxDepth int
	rng      random.Source
	nodes    []node
}

// grow appends the node for idx and its subtree, returning the node's index.
// When a split leaves every sample on one side, the depth bound still ends recursion.
func (b *builder) grow(idx []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, node{size: len(idx), left: noChild, right: noChild})

	// Terminal conditions
	if depth >= b.maxDepth || len(idx) <= 1 {
		b.nodes[id].leaf = true
		return id
	}

	attr := b.rng.NextInt(0, b.dims-1)

	minVal := b.samples[idx[0]].At(attr)
	maxVal := minVal
	for _, i := range idx[1:] {
		v := b.samples[i].At(attr)
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	if minVal == maxVal {
		b.nodes[id].leaf = true
		return id
	}

	split := b.rng.NextInt(minVal, maxVal)
	b.nodes[id].attribute = attr
	b.nodes[id].value = split

	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if b.samples[i].At(attr) < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// grow may reallocate b.nodes, so children are assigned after it returns.
	if len(left) > 0 {
		child := b.grow(left, depth+1)
		b.nodes[id].left = child
	}
	if len(right) > 0 {
		child := b.grow(right, depth+1)
		b.nodes[id].right = child
	}

	return id
}

// PathLength returns the number of edges from the root to the node sample ends in,
// plus CFactor of that node's training size.
func (t *Tree) PathLength(sample features.Vector) float64 {
	if len(t.nodes) == 0 {
		return 0
	}

	depth, cur := 0, 0
	for {
		n := &t.nodes[cur]
		if n.leaf {
			break
		}

		next := noChild
		if sample.At(n.attribute) < n.value && n.left != noChild {
			next = n.left
		} else if n.right != noChild {
			next = n.right
		}
		if next == noChild {
			break
		}

		cur = next
		depth++
	}

	return float64(depth) + CFactor(t.nodes[cur].size)
}

// MaxDepth returns the depth bound the tree was built with.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// NumNodes returns the number of nodes in the tree.
func (t *Tree) NumNodes() int { return len(t.nodes) }

// Size returns the number of samples the tree was built from.
func (t *Tree) Size() int {
	if len(t.nodes) == 0 {
		return 0
	}
	return t.nodes[0].size
}

// Height returns the length of the longest root-to-leaf path.
func (t *Tree) Height() int {
	if len(t.nodes) == 0 {
		return 0
	}
	return t.height(0)
}

func (t *Tree) height(i int) int {
	n := t.nodes[i]
	h := 0
	for _, c := range []int{n.left, n.right} {
		if c != noChild {
			if ch := t.height(c) + 1; ch > h {
				h = ch
			}
		}
	}
	return h
}
