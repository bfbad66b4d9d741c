package tree

import (
	"unsafe"
)

// Node is the linkage embedded by value into a caller defined element.
//
//	type element struct {
//		key  int
//		node tree.Node[element]
//	}
//
// An element owns one Node per tree it may join. The zero value is an
// unlinked node. While the element is inserted, the tree exclusively
// owns the node fields.
type Node[E any] struct {
	parent *Node[E]
	left   *Node[E]
	right  *Node[E]
	// The embedding element, recorded when linked.
	owner  *E
	height uint32
	color  RBColor
}

// Linker addresses the Node embedded in an element.
// It is fixed at tree initialization and never changes afterwards.
type Linker[E any] func(elem *E) *Node[E]

// OffsetLinker addresses the Node by its byte offset in the element,
// e.g. unsafe.Offsetof(element{}.node).
// An offset not matching the element layout is undefined behavior.
func OffsetLinker[E any](offset uintptr) Linker[E] {
	return func(elem *E) *Node[E] {
		return (*Node[E])(unsafe.Add(unsafe.Pointer(elem), offset))
	}
}

func (node *Node[E]) Parent() *Node[E] {
	if node == nil {
		return nil
	}
	return node.parent
}

func (node *Node[E]) Left() *Node[E] {
	if node == nil {
		return nil
	}
	return node.left
}

func (node *Node[E]) Right() *Node[E] {
	if node == nil {
		return nil
	}
	return node.right
}

func (node *Node[E]) Elem() *E {
	if node == nil {
		return nil
	}
	return node.owner
}

// Height is the AVL subtree height, 0 for an empty subtree.
func (node *Node[E]) Height() uint32 {
	if node == nil {
		return 0
	}
	return node.height
}

// Color is the RB color, nil leaves are black.
func (node *Node[E]) Color() RBColor {
	if node == nil {
		return Black
	}
	return node.color
}

func (node *Node[E]) IsLinked() bool {
	return node != nil && node.owner != nil
}

func (node *Node[E]) reset() {
	node.parent = nil
	node.left = nil
	node.right = nil
	node.owner = nil
	node.height = 0
	node.color = Black
}

func (node *Node[E]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *Node[E]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *Node[E]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *Node[E]) Direction() Direction {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] nil node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *Node[E]) child(dir Direction) *Node[E] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] root direction has no child")
	}
}

func (node *Node[E]) sibling() *Node[E] {
	switch node.Direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *Node[E]) uncle() *Node[E] {
	return node.parent.sibling()
}

func (node *Node[E]) grandpa() *Node[E] {
	return node.parent.parent
}

func (node *Node[E]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *Node[E]) leftHeight() uint32 {
	return node.left.Height()
}

func (node *Node[E]) rightHeight() uint32 {
	return node.right.Height()
}

// balanceFactor is left subtree height minus right subtree height.
func (node *Node[E]) balanceFactor() int64 {
	return int64(node.leftHeight()) - int64(node.rightHeight())
}

// resetHeight recomputes the height from the children and returns it.
func (node *Node[E]) resetHeight() uint32 {
	node.height = max(node.leftHeight(), node.rightHeight()) + 1
	return node.height
}

func (node *Node[E]) minimum() *Node[E] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *Node[E]) maximum() *Node[E] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order
func (node *Node[E]) pred() *Node[E] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *Node[E]) succ() *Node[E] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}
