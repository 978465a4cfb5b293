package ensemble

import (
	"container/heap"
)

// machineEpsilon guards the leaf value denominator.
const machineEpsilon = 0x1p-52

// treeNode is one node of a fitted tree. Leaves carry a value; internal
// nodes send a sample left when its feature value is <= threshold
// (equivalently, when its bin is <= binThreshold).
type treeNode struct {
	value        float64
	count        int
	isLeaf       bool
	feature      int
	threshold    float64
	binThreshold uint8
	left         int
	right        int
	depth        int
	gain         float64
}

// treePredictor is a fitted regression tree stored as a flat node slice
// rooted at index 0.
type treePredictor struct {
	nodes []treeNode
}

// predictRow returns the leaf value reached by row.
func (t *treePredictor) predictRow(row []float64) float64 {
	n := &t.nodes[0]
	for !n.isLeaf {
		if row[n.feature] <= n.threshold {
			n = &t.nodes[n.left]
		} else {
			n = &t.nodes[n.right]
		}
	}
	return n.value
}

// predictBinned returns the leaf value reached by sample i of binned data.
func (t *treePredictor) predictBinned(binned [][]uint8, i int) float64 {
	n := &t.nodes[0]
	for !n.isLeaf {
		if binned[n.feature][i] <= n.binThreshold {
			n = &t.nodes[n.left]
		} else {
			n = &t.nodes[n.right]
		}
	}
	return n.value
}

// nLeaves returns the number of leaves.
func (t *treePredictor) nLeaves() int {
	n := 0
	for i := range t.nodes {
		if t.nodes[i].isLeaf {
			n++
		}
	}
	return n
}

// maxDepth returns the depth of the deepest leaf.
func (t *treePredictor) maxDepth() int {
	d := 0
	for i := range t.nodes {
		d = max(d, t.nodes[i].depth)
	}
	return d
}

// growingNode is a node that still owns its samples while the tree grows.
type growingNode struct {
	id           int
	samples      []int
	sumGradients float64
	sumHessians  float64
	depth        int
	hist         histogram
	split        splitInfo
}

// splitHeap is a max-heap of splittable nodes by gain. Equal gains pop in
// creation order.
type splitHeap []*growingNode

func (h splitHeap) Len() int { return len(h) }
func (h splitHeap) Less(i, j int) bool {
	if h[i].split.gain != h[j].split.gain {
		return h[i].split.gain > h[j].split.gain
	}
	return h[i].id < h[j].id
}
func (h splitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *splitHeap) Push(x any)   { *h = append(*h, x.(*growingNode)) }
func (h *splitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// leafAssignment records which training samples landed in a leaf.
type leafAssignment struct {
	value   float64
	samples []int
}

// treeGrower grows one tree best-first: the splittable leaf with the
// largest gain is split next, until no leaf can be split or maxLeafNodes is
// reached.
type treeGrower struct {
	hist           *histogramBuilder
	splitter       *splitter
	binned         [][]uint8
	thresholds     [][]float64
	shrinkage      float64
	maxLeafNodes   int
	maxDepth       int
	minSamplesLeaf int

	nodes  []treeNode
	leaves []leafAssignment
	queue  splitHeap
}

// grow builds a tree over samples. It returns the tree and the leaf each
// training sample ended up in.
func (g *treeGrower) grow(samples []int) (*treePredictor, []leafAssignment) {
	g.nodes = g.nodes[:0]
	g.leaves = nil
	g.queue = g.queue[:0]

	var sumG, sumH float64
	for _, i := range samples {
		sumG += g.hist.gradients[i]
		sumH += g.hist.hessians[i]
	}
	root := g.newNode(samples, sumG, sumH, 0)
	if g.canSplit(root) {
		root.hist = g.hist.build(samples)
		g.pushIfSplittable(root)
	} else {
		g.finalizeLeaf(root)
	}

	nLeaves := 1
	for g.queue.Len() > 0 {
		node := heap.Pop(&g.queue).(*growingNode)
		left, right := g.splitNode(node)
		nLeaves++

		if nLeaves >= g.maxLeafNodes {
			g.finalizeLeaf(left)
			g.finalizeLeaf(right)
			for g.queue.Len() > 0 {
				g.finalizeLeaf(heap.Pop(&g.queue).(*growingNode))
			}
			break
		}

		splitLeft, splitRight := g.canSplit(left), g.canSplit(right)
		if splitLeft || splitRight {
			small, large := left, right
			if len(right.samples) < len(left.samples) {
				small, large = right, left
			}
			small.hist = g.hist.build(small.samples)
			large.hist = subtract(node.hist, small.hist)
		}
		node.hist = nil

		for _, c := range []struct {
			node       *growingNode
			splittable bool
		}{{left, splitLeft}, {right, splitRight}} {
			if c.splittable {
				g.pushIfSplittable(c.node)
			} else {
				g.finalizeLeaf(c.node)
			}
		}
	}

	nodes := make([]treeNode, len(g.nodes))
	copy(nodes, g.nodes)
	return &treePredictor{nodes: nodes}, g.leaves
}

func (g *treeGrower) newNode(samples []int, sumG, sumH float64, depth int) *growingNode {
	id := len(g.nodes)
	g.nodes = append(g.nodes, treeNode{count: len(samples), depth: depth})
	return &growingNode{
		id:           id,
		samples:      samples,
		sumGradients: sumG,
		sumHessians:  sumH,
		depth:        depth,
	}
}

// canSplit reports whether a node is allowed to have children at all.
func (g *treeGrower) canSplit(n *growingNode) bool {
	if g.maxDepth > 0 && n.depth >= g.maxDepth {
		return false
	}
	return len(n.samples) >= 2*g.minSamplesLeaf
}

func (g *treeGrower) pushIfSplittable(n *growingNode) {
	split, ok := g.splitter.findBestSplit(n.hist, n.sumGradients, n.sumHessians, len(n.samples))
	if !ok {
		g.finalizeLeaf(n)
		return
	}
	n.split = split
	heap.Push(&g.queue, n)
}

// splitNode partitions n's samples according to its split and records n as
// an internal node.
func (g *treeGrower) splitNode(n *growingNode) (*growingNode, *growingNode) {
	s := n.split
	col := g.binned[s.feature]
	leftSamples := make([]int, 0, s.countLeft)
	rightSamples := make([]int, 0, s.countRight)
	for _, i := range n.samples {
		if int(col[i]) <= s.binIdx {
			leftSamples = append(leftSamples, i)
		} else {
			rightSamples = append(rightSamples, i)
		}
	}
	n.samples = nil

	left := g.newNode(leftSamples, s.sumGradientsLeft, s.sumHessiansLeft, n.depth+1)
	right := g.newNode(rightSamples, s.sumGradientsRight, s.sumHessiansRight, n.depth+1)

	node := &g.nodes[n.id]
	node.feature = s.feature
	node.binThreshold = uint8(s.binIdx)
	node.threshold = g.thresholds[s.feature][s.binIdx]
	node.left = left.id
	node.right = right.id
	node.gain = s.gain
	return left, right
}

// finalizeLeaf turns n into a leaf with value -shrinkage·G/(H+λ).
func (g *treeGrower) finalizeLeaf(n *growingNode) {
	value := -g.shrinkage * n.sumGradients / (n.sumHessians + g.splitter.l2Regularization + machineEpsilon)
	node := &g.nodes[n.id]
	node.isLeaf = true
	node.value = value
	g.leaves = append(g.leaves, leafAssignment{value: value, samples: n.samples})
	n.hist = nil
}
