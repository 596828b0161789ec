// Package ml fits a small decision-tree classifier over the current
// student records and labels each student's expected performance. The
// model lives only for the duration of one request: Fit is a pure
// function of the records passed in, and nothing is persisted between
// calls.
package ml

import (
	"sort"
)

// node is one decision point in the tree. Leaves carry a label and no
// children; internal nodes route on feature < threshold.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	label     string
	leaf      bool
}

// Tree is a CART-style binary classification tree split on gini impurity.
type Tree struct {
	root        *node
	importances []float64
}

// FitTree grows a tree of at most maxDepth levels on the given samples.
// X is row-major: X[i] holds the feature vector for label y[i]. All rows
// must have the same length. Feature importances accumulate the total
// impurity decrease contributed by each feature and are normalized to
// sum to 1 (all zeros when no split improved anything).
func FitTree(X [][]float64, y []string, maxDepth int) *Tree {
	t := &Tree{importances: make([]float64, featureCount(X))}
	t.root = t.grow(X, y, maxDepth, len(y))
	normalize(t.importances)
	return t
}

// Predict routes one feature vector down the tree and returns the label
// of the leaf it lands in.
func (t *Tree) Predict(x []float64) string {
	n := t.root
	for !n.leaf {
		if x[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.label
}

// FeatureImportances returns the normalized impurity-decrease weight per
// feature, in the same order as the columns of X.
func (t *Tree) FeatureImportances() []float64 {
	out := make([]float64, len(t.importances))
	copy(out, t.importances)
	return out
}

func featureCount(X [][]float64) int {
	if len(X) == 0 {
		return 0
	}
	return len(X[0])
}

// grow builds the subtree for one sample partition. total is the size of
// the full training set, used to weight importance contributions.
func (t *Tree) grow(X [][]float64, y []string, depth, total int) *node {
	if depth == 0 || gini(y) == 0 {
		return &node{leaf: true, label: majority(y)}
	}

	feature, threshold, decrease := bestSplit(X, y)
	if decrease <= 0 {
		// No split separates the classes any further.
		return &node{leaf: true, label: majority(y)}
	}

	t.importances[feature] += decrease * float64(len(y)) / float64(total)

	var lX, rX [][]float64
	var lY, rY []string
	for i, row := range X {
		if row[feature] < threshold {
			lX, lY = append(lX, row), append(lY, y[i])
		} else {
			rX, rY = append(rX, row), append(rY, y[i])
		}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      t.grow(lX, lY, depth-1, total),
		right:     t.grow(rX, rY, depth-1, total),
	}
}

// bestSplit scans every feature and every midpoint between consecutive
// distinct values for the split with the largest gini decrease.
func bestSplit(X [][]float64, y []string) (feature int, threshold, decrease float64) {
	parent := gini(y)
	n := float64(len(y))
	feature = -1

	for f := 0; f < featureCount(X); f++ {
		order := make([]int, len(y))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]][f] < X[order[b]][f]
		})

		left := newCounter()
		right := newCounter()
		for _, i := range order {
			right.add(y[i])
		}

		for pos := 1; pos < len(order); pos++ {
			moved := order[pos-1]
			left.add(y[moved])
			right.remove(y[moved])

			prev := X[order[pos-1]][f]
			cur := X[order[pos]][f]
			if prev == cur {
				continue
			}

			d := parent -
				(float64(pos)/n)*left.gini() -
				((n-float64(pos))/n)*right.gini()
			if d > decrease {
				feature, threshold, decrease = f, (prev+cur)/2, d
			}
		}
	}

	return feature, threshold, decrease
}

// counter tracks class frequencies for incremental gini updates while a
// candidate split point sweeps through the sorted samples.
type counter struct {
	counts map[string]int
	total  int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	c.counts[label]++
	c.total++
}

func (c *counter) remove(label string) {
	c.counts[label]--
	c.total--
}

func (c *counter) gini() float64 {
	if c.total == 0 {
		return 0
	}
	sum := 0.0
	for _, count := range c.counts {
		p := float64(count) / float64(c.total)
		sum += p * p
	}
	return 1 - sum
}

func gini(y []string) float64 {
	c := newCounter()
	for _, label := range y {
		c.add(label)
	}
	return c.gini()
}

// majority returns the most frequent label, ties broken toward the
// lexicographically smaller one for deterministic output.
func majority(y []string) string {
	counts := make(map[string]int)
	for _, label := range y {
		counts[label]++
	}
	var best string
	bestCount := -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}
	return best
}

func normalize(v []float64) {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	if sum == 0 {
		return
	}
	for i := range v {
		v[i] /= sum
	}
}
