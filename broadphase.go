// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import "bytes"

// pair is a candidate colliding pair, stably ordered so the same two
// bodies always produce the same (a, b) regardless of discovery
// order, which keeps manifold lookups (keyed by ordered pair) and
// reference/incident assignment frame-coherent.
type pair struct {
	a, b BodyHandle
}

func orderedPair(a, b BodyHandle) pair {
	if bytes.Compare(a.id[:], b.id[:]) <= 0 {
		return pair{a, b}
	}
	return pair{b, a}
}

// broadPhase walks the BVH breadth-first. Any internal node whose two
// children's boxes do not overlap lets both children be queued
// independently (pruning the cross product between them is sound);
// when they do overlap, every leaf pair drawn one from each subtree is
// a candidate. Candidate pairs are deduplicated with a stable
// ordering before being handed to the narrow phase.
func (t *bvh) broadPhase() []pair {
	if t.root == -1 {
		return nil
	}
	seen := map[pair]bool{}
	var pairs []pair
	var queue []int
	queue = append(queue, t.root)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n := &t.nodes[cur]
		if n.isLeaf() {
			continue
		}
		left, right := n.left, n.right
		if t.nodes[left].box.Overlaps(&t.nodes[right].box) {
			t.collectPairs(left, right, seen, &pairs)
		}
		queue = append(queue, left, right)
	}
	return pairs
}

// collectPairs enumerates every leaf-pair straddling subtrees rooted
// at i and j, given that their boxes are known (or assumed, on the
// recursive calls below) to overlap.
func (t *bvh) collectPairs(i, j int, seen map[pair]bool, out *[]pair) {
	ni, nj := &t.nodes[i], &t.nodes[j]
	switch {
	case ni.isLeaf() && nj.isLeaf():
		p := orderedPair(ni.client, nj.client)
		if !seen[p] {
			seen[p] = true
			*out = append(*out, p)
		}
	case ni.isLeaf():
		if ni.box.Overlaps(&t.nodes[nj.left].box) {
			t.collectPairs(i, nj.left, seen, out)
		}
		if ni.box.Overlaps(&t.nodes[nj.right].box) {
			t.collectPairs(i, nj.right, seen, out)
		}
	case nj.isLeaf():
		if nj.box.Overlaps(&t.nodes[ni.left].box) {
			t.collectPairs(ni.left, j, seen, out)
		}
		if nj.box.Overlaps(&t.nodes[ni.right].box) {
			t.collectPairs(ni.right, j, seen, out)
		}
	default:
		for _, a := range [2]int{ni.left, ni.right} {
			for _, b := range [2]int{nj.left, nj.right} {
				if t.nodes[a].box.Overlaps(&t.nodes[b].box) {
					t.collectPairs(a, b, seen, out)
				}
			}
		}
	}
}
