package formulas

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Linkage selects how the distance between two clusters is derived from member distances.
type Linkage string

const (
	LinkageSingle   Linkage = "single"
	LinkageComplete Linkage = "complete"
	LinkageAverage  Linkage = "average"
)

// ErrUnknownLinkage is returned for a linkage name other than single, complete or average.
var ErrUnknownLinkage = errors.New("unknown linkage")

// ParseLinkage returns the linkage named by s. An empty name is single linkage.
func ParseLinkage(s string) (Linkage, error) {
	switch l := Linkage(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LinkageSingle, nil
	case LinkageSingle, LinkageComplete, LinkageAverage:
		return l, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLinkage, s)
	}
}

// ClusterNode is a node of an agglomerative clustering dendrogram.
// Leaves hold a single index; Height is the linkage distance at which the node merged.
type ClusterNode struct {
	Left    *ClusterNode
	Right   *ClusterNode
	Leaves  []int
	Height  float64
	minLeaf int
}

// IsLeaf reports whether the node holds a single asset.
func (n *ClusterNode) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// BuildDendrogram runs agglomerative clustering over a distance matrix.
// Ties are broken by the smallest leaf index of each candidate pair so the tree is deterministic.
func BuildDendrogram(dist [][]float64, linkage Linkage) *ClusterNode {
	n := len(dist)
	if n == 0 {
		return nil
	}
	clusters := make([]*ClusterNode, 0, n)
	for i := 0; i < n; i++ {
		clusters = append(clusters, &ClusterNode{Leaves: []int{i}, minLeaf: i})
	}

	for len(clusters) > 1 {
		bestI := 0
		bestJ := 1
		bestD := clusterDistance(dist, clusters[0], clusters[1], linkage)

		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				d := clusterDistance(dist, clusters[i], clusters[j], linkage)
				if d < bestD || (d == bestD && clusterPairLess(clusters[i], clusters[j], clusters[bestI], clusters[bestJ])) {
					bestD = d
					bestI = i
					bestJ = j
				}
			}
		}

		left := clusters[bestI]
		right := clusters[bestJ]
		if right.minLeaf < left.minLeaf {
			left, right = right, left
		}

		leaves := make([]int, 0, len(left.Leaves)+len(right.Leaves))
		leaves = append(leaves, left.Leaves...)
		leaves = append(leaves, right.Leaves...)

		merged := &ClusterNode{
			Left:    left,
			Right:   right,
			Leaves:  leaves,
			Height:  bestD,
			minLeaf: left.minLeaf,
		}

		next := make([]*ClusterNode, 0, len(clusters)-1)
		for k := 0; k < len(clusters); k++ {
			if k == bestI || k == bestJ {
				continue
			}
			next = append(next, clusters[k])
		}
		next = append(next, merged)
		clusters = next
	}

	return clusters[0]
}

func clusterPairLess(a1, b1, a2, b2 *ClusterNode) bool {
	x1, y1 := a1.minLeaf, b1.minLeaf
	if y1 < x1 {
		x1, y1 = y1, x1
	}
	x2, y2 := a2.minLeaf, b2.minLeaf
	if y2 < x2 {
		x2, y2 = y2, x2
	}
	if x1 != x2 {
		return x1 < x2
	}
	return y1 < y2
}

func clusterDistance(dist [][]float64, a, b *ClusterNode, linkage Linkage) float64 {
	switch linkage {
	case LinkageComplete:
		best := math.Inf(-1)
		for _, i := range a.Leaves {
			for _, j := range b.Leaves {
				if dist[i][j] > best {
					best = dist[i][j]
				}
			}
		}
		return best
	case LinkageAverage:
		sum := 0.0
		count := 0
		for _, i := range a.Leaves {
			for _, j := range b.Leaves {
				sum += dist[i][j]
				count++
			}
		}
		if count == 0 {
			return math.Inf(1)
		}
		return sum / float64(count)
	default:
		best := math.Inf(1)
		for _, i := range a.Leaves {
			for _, j := range b.Leaves {
				if dist[i][j] < best {
					best = dist[i][j]
				}
			}
		}
		return best
	}
}

// QuasiDiagonalOrder returns the leaf order of the dendrogram, left subtree first.
func QuasiDiagonalOrder(node *ClusterNode) []int {
	if node == nil {
		return nil
	}
	if node.IsLeaf() {
		return []int{node.Leaves[0]}
	}
	left := QuasiDiagonalOrder(node.Left)
	right := QuasiDiagonalOrder(node.Right)
	out := make([]int, 0, len(left)+len(right))
	out = append(out, left...)
	out = append(out, right...)
	return out
}

// CutTree splits the dendrogram into at most k clusters by repeatedly undoing the
// highest remaining merge. Clusters are returned with sorted member indices, ordered
// by their smallest member.
func CutTree(root *ClusterNode, k int) [][]int {
	if root == nil {
		return nil
	}
	if k < 1 {
		k = 1
	}
	current := []*ClusterNode{root}
	for len(current) < k {
		split := -1
		for i, node := range current {
			if node.IsLeaf() {
				continue
			}
			if split < 0 || node.Height > current[split].Height {
				split = i
			}
		}
		if split < 0 {
			break
		}
		node := current[split]
		current = append(current[:split], current[split+1:]...)
		current = append(current, node.Left, node.Right)
	}

	out := make([][]int, 0, len(current))
	for _, node := range current {
		members := append([]int(nil), node.Leaves...)
		sort.Ints(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
