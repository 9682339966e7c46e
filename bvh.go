// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package rigid

import (
	"log/slog"

	"github.com/kelvinfold/rigid/math/lin"
)

// bvhNode is one slot of the tree arena. A leaf has left == right == -1
// and client identifying the registered body; an internal node has
// both children set and client is the zero BodyHandle.
type bvhNode struct {
	box    lin.AABB
	client BodyHandle
	left   int
	right  int
	parent int
	height int
}

func (n *bvhNode) isLeaf() bool { return n.left == -1 && n.right == -1 }

// bvh is a self-balancing AABB tree with fattened leaf boxes, stored
// as an arena of nodes addressed by integer index with a free list for
// reused slots. This mirrors a heap-linked node graph without Go
// pointers forming reference cycles between nodes.
type bvh struct {
	nodes    []bvhNode
	freeList []int
	root     int // -1 when empty.
	extent   float64
}

func newBVH(extent float64) *bvh {
	return &bvh{root: -1, extent: extent}
}

func (t *bvh) allocate() int {
	if n := len(t.freeList); n > 0 {
		idx := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		return idx
	}
	t.nodes = append(t.nodes, bvhNode{})
	return len(t.nodes) - 1
}

// free clears and returns a node slot to the free list. Cleared fields
// match the invariant in §5: freed slots are guaranteed clean (links
// nulled, height 0) before reuse.
func (t *bvh) free(index int) {
	n := &t.nodes[index]
	n.client = BodyHandle{}
	n.left, n.right, n.parent, n.height = -1, -1, -1, 0
	t.freeList = append(t.freeList, index)
}

func union(a, b *lin.AABB) lin.AABB {
	var c lin.AABB
	c.Union(a, b)
	return c
}

// insert adds a leaf for client with the given tight world AABB,
// fattened by the tree's extent, and returns the leaf's node index.
func (t *bvh) insert(client BodyHandle, tight *lin.AABB) int {
	leaf := t.allocate()
	n := &t.nodes[leaf]
	n.box.Set(tight).Expand(t.extent)
	n.left, n.right = -1, -1
	n.client = client
	n.height = 0

	if t.root == -1 {
		t.root = leaf
		n.parent = -1
		return leaf
	}

	leafBox := n.box

	// 1: find the best sibling by SAH-surrogate descent.
	sibling := t.root
	for !t.nodes[sibling].isLeaf() {
		s := &t.nodes[sibling]
		left, right := s.left, s.right

		combined := union(&s.box, &leafBox)
		combinedArea := combined.Area()
		cost := 2 * combinedArea
		inherit := 2 * (combinedArea - s.box.Area())

		leftCost := inherit
		if t.nodes[left].isLeaf() {
			leftCost += union(&t.nodes[left].box, &leafBox).Area()
		} else {
			leftCost += union(&t.nodes[left].box, &leafBox).Area() - t.nodes[left].box.Area()
		}

		rightCost := inherit
		if t.nodes[right].isLeaf() {
			rightCost += union(&t.nodes[right].box, &leafBox).Area()
		} else {
			rightCost += union(&t.nodes[right].box, &leafBox).Area() - t.nodes[right].box.Area()
		}

		if cost < leftCost && cost < rightCost {
			break
		}
		if leftCost < rightCost {
			sibling = left
		} else {
			sibling = right
		}
	}

	// 2: create a new parent in the sibling's old slot.
	oldParent := t.nodes[sibling].parent
	newParent := t.allocate()
	p := &t.nodes[newParent]
	p.parent = oldParent
	p.client = BodyHandle{}
	p.box = union(&leafBox, &t.nodes[sibling].box)
	p.height = t.nodes[sibling].height + 1
	p.left, p.right = sibling, leaf

	if oldParent != -1 {
		if t.nodes[oldParent].left == sibling {
			t.nodes[oldParent].left = newParent
		} else {
			t.nodes[oldParent].right = newParent
		}
	} else {
		t.root = newParent
	}
	t.nodes[sibling].parent = newParent
	t.nodes[leaf].parent = newParent

	// 3: walk back up refitting and rebalancing.
	index := t.nodes[leaf].parent
	for index != -1 {
		index = t.balance(index)
		left, right := t.nodes[index].left, t.nodes[index].right
		t.nodes[index].height = 1 + maxInt(t.nodes[left].height, t.nodes[right].height)
		t.nodes[index].box = union(&t.nodes[left].box, &t.nodes[right].box)
		index = t.nodes[index].parent
	}
	return leaf
}

// remove deletes the leaf at index, splicing its sibling into the
// grandparent's slot and rebalancing from there upward.
func (t *bvh) remove(index int) {
	if index == t.root {
		t.root = -1
		t.free(index)
		return
	}

	parent := t.nodes[index].parent
	grandParent := t.nodes[parent].parent
	var sibling int
	if t.nodes[parent].left == index {
		sibling = t.nodes[parent].right
	} else {
		sibling = t.nodes[parent].left
	}

	if grandParent == -1 {
		t.root = sibling
		t.nodes[sibling].parent = -1
		t.free(parent)
	} else {
		if t.nodes[grandParent].left == parent {
			t.nodes[grandParent].left = sibling
		} else {
			t.nodes[grandParent].right = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.free(parent)

		i := grandParent
		for i != -1 {
			i = t.balance(i)
			left, right := t.nodes[i].left, t.nodes[i].right
			t.nodes[i].box = union(&t.nodes[left].box, &t.nodes[right].box)
			t.nodes[i].height = 1 + maxInt(t.nodes[left].height, t.nodes[right].height)
			i = t.nodes[i].parent
		}
	}
	t.free(index)
}

// update does a breadth-first walk collecting every leaf whose body no
// longer fits its fat box, then removes and reinserts all of them.
// Collecting first avoids mutating the tree mid-traversal.
func (t *bvh) update(tightBoxOf func(BodyHandle) *lin.AABB) {
	if t.root == -1 {
		return
	}
	type stale struct {
		index  int
		client BodyHandle
	}
	var queue []int
	var staleList []stale
	queue = append(queue, t.root)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n := &t.nodes[cur]
		if n.left != -1 {
			queue = append(queue, n.left)
		}
		if n.right != -1 {
			queue = append(queue, n.right)
		}
		if n.isLeaf() {
			tight := tightBoxOf(n.client)
			if !n.box.Contains(tight) {
				staleList = append(staleList, stale{cur, n.client})
			}
		}
	}
	for _, s := range staleList {
		t.remove(s.index)
	}
	for _, s := range staleList {
		t.insert(s.client, tightBoxOf(s.client))
	}
}

// balance applies a single AVL-style rotation at index if the node's
// two children differ in height by more than one, promoting the
// taller grandchild to the side opposite the rotation. It returns the
// index that now occupies the position index used to hold (the
// rotated-up child, or index itself if no rotation was needed).
func (t *bvh) balance(index int) int {
	a := &t.nodes[index]
	if a.isLeaf() || a.height < 2 {
		return index
	}

	b, c := a.left, a.right
	B, C := &t.nodes[b], &t.nodes[c]
	balance := C.height - B.height

	if balance > 1 {
		f, g := C.left, C.right
		F, G := &t.nodes[f], &t.nodes[g]

		C.left = index
		C.parent = a.parent
		a.parent = c
		if C.parent == -1 {
			t.root = c
		} else if t.nodes[C.parent].left == index {
			t.nodes[C.parent].left = c
		} else {
			t.nodes[C.parent].right = c
		}

		if F.height > G.height {
			C.right = f
			a.right = g
			G.parent = index
			a.box = union(&B.box, &G.box)
			C.box = union(&a.box, &F.box)
			a.height = 1 + maxInt(B.height, G.height)
			C.height = 1 + maxInt(a.height, F.height)
		} else {
			C.right = g
			a.right = f
			F.parent = index
			a.box = union(&B.box, &F.box)
			C.box = union(&a.box, &G.box)
			a.height = 1 + maxInt(B.height, F.height)
			C.height = 1 + maxInt(a.height, G.height)
		}
		return c
	}

	if balance < -1 {
		d, e := B.left, B.right
		D, E := &t.nodes[d], &t.nodes[e]

		B.left = index
		B.parent = a.parent
		a.parent = b
		if B.parent == -1 {
			t.root = b
		} else if t.nodes[B.parent].left == index {
			t.nodes[B.parent].left = b
		} else {
			t.nodes[B.parent].right = b
		}

		if D.height > E.height {
			B.right = d
			a.left = e
			E.parent = index
			a.box = union(&C.box, &E.box)
			B.box = union(&a.box, &D.box)
			a.height = 1 + maxInt(C.height, E.height)
			B.height = 1 + maxInt(a.height, D.height)
		} else {
			B.right = e
			a.left = d
			D.parent = index
			a.box = union(&C.box, &D.box)
			B.box = union(&a.box, &E.box)
			a.height = 1 + maxInt(C.height, D.height)
			B.height = 1 + maxInt(a.height, E.height)
		}
		return b
	}

	return index
}

// findIndex does a breadth-first search for the leaf registered to
// client, returning -1 if none is found.
func (t *bvh) findIndex(client BodyHandle) int {
	if t.root == -1 {
		return -1
	}
	queue := []int{t.root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n := &t.nodes[cur]
		if n.client == client {
			return cur
		}
		if n.left != -1 {
			queue = append(queue, n.left)
		}
		if n.right != -1 {
			queue = append(queue, n.right)
		}
	}
	return -1
}

// queryAABB returns every leaf body whose fat box overlaps box, a
// read-only traversal used for debug/observation queries.
func (t *bvh) queryAABB(box *lin.AABB) []BodyHandle {
	var out []BodyHandle
	if t.root == -1 {
		return out
	}
	queue := []int{t.root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n := &t.nodes[cur]
		if !n.box.Overlaps(box) {
			continue
		}
		if n.isLeaf() {
			out = append(out, n.client)
			continue
		}
		queue = append(queue, n.left, n.right)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// checkInvariants validates the AABB-containment and balance
// invariants (§8 properties 1-2) over the whole tree. It is used by
// tests, not by the simulation step.
func (t *bvh) checkInvariants() (ok bool, reason string) {
	if t.root == -1 {
		return true, ""
	}
	var walk func(i int) (ok bool, reason string, height int)
	walk = func(i int) (bool, string, int) {
		n := &t.nodes[i]
		if n.isLeaf() {
			return true, "", 0
		}
		lOK, lReason, lh := walk(n.left)
		if !lOK {
			return false, lReason, 0
		}
		rOK, rReason, rh := walk(n.right)
		if !rOK {
			return false, rReason, 0
		}
		if !n.box.Contains(&t.nodes[n.left].box) || !n.box.Contains(&t.nodes[n.right].box) {
			return false, "node box does not contain a child box", 0
		}
		wantHeight := 1 + maxInt(lh, rh)
		if n.height != wantHeight {
			return false, "node height does not match 1+max(child heights)", 0
		}
		bal := rh - lh
		if bal > 1 || bal < -1 {
			return false, "balance factor exceeds 1", 0
		}
		return true, "", wantHeight
	}
	ok, reason, _ = walk(t.root)
	if !ok {
		slog.Debug("bvh invariant violated", "reason", reason)
	}
	return ok, reason
}
