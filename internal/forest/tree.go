// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package forest

import "sort"

// leaf marks a node without children.
const leaf = -1

type regNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// regressionTree is a CART tree minimising squared error.
type regressionTree struct {
	nodes []regNode
}

type treeParams struct {
	minSamplesSplit int
	minSamplesLeaf  int
	maxDepth        int
}

// fitRegressionTree grows a tree over the rows listed in idx. idx may
// contain duplicates (bootstrap samples).
func fitRegressionTree(X [][]float64, y []float64, idx []int, p treeParams) *regressionTree {
	t := &regressionTree{}
	t.grow(X, y, idx, p, 0)
	return t
}

func (t *regressionTree) grow(X [][]float64, y []float64, idx []int, p treeParams, depth int) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, regNode{left: leaf, right: leaf, value: mean(y, idx)})

	if len(idx) < p.minSamplesSplit || (p.maxDepth > 0 && depth >= p.maxDepth) || constant(y, idx) {
		return id
	}

	feature, threshold, ok := bestSplit(X, y, idx, p.minSamplesLeaf)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := t.grow(X, y, left, p, depth+1)
	r := t.grow(X, y, right, p, depth+1)
	t.nodes[id].feature = feature
	t.nodes[id].threshold = threshold
	t.nodes[id].left = l
	t.nodes[id].right = r
	return id
}

func (t *regressionTree) predict(x []float64) float64 {
	n := 0
	for t.nodes[n].left != leaf {
		if x[t.nodes[n].feature] <= t.nodes[n].threshold {
			n = t.nodes[n].left
		} else {
			n = t.nodes[n].right
		}
	}
	return t.nodes[n].value
}

// bestSplit scans every feature for the threshold minimising the summed
// squared error of the two children. Thresholds are midpoints between
// consecutive distinct values; both children keep at least minLeaf rows.
func bestSplit(X [][]float64, y []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	if minLeaf < 1 {
		minLeaf = 1
	}
	if n < 2*minLeaf {
		return 0, 0, false
	}

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += y[i]
		totalSq += y[i] * y[i]
	}
	best := totalSq - totalSum*totalSum/float64(n)

	sorted := make([]int, n)
	for f := range X[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			v := y[sorted[k]]
			leftSum += v
			leftSq += v * v

			nl := k + 1
			nr := n - nl
			if nl < minLeaf {
				continue
			}
			if nr < minLeaf {
				break
			}
			cur, next := X[sorted[k]][f], X[sorted[k+1]][f]
			if cur == next {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(nl)) + (rightSq - rightSum*rightSum/float64(nr))
			if sse < best-1e-12 {
				best = sse
				feature = f
				threshold = cur + (next-cur)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func mean(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var s float64
	for _, i := range idx {
		s += y[i]
	}
	return s / float64(len(idx))
}

func constant(y []float64, idx []int) bool {
	if len(idx) < 2 {
		return true
	}
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
