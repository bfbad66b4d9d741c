package tree

// References:
// https://en.wikipedia.org/wiki/AVL_tree
// AVL tree properties:
// p1. For every node, |height(left) - height(right)| <= 1.
// p2. The empty subtree height is 0, a leaf height is 1 and an internal
//   node height is 1 + max(height(left), height(right)).
// (Conclusion) A single insertion needs at most one (double) rotation to
//   restore p1, but the heights may keep propagating above it. A single
//   removal may need rotations at multiple ancestor levels.

var _ AVLTree[struct{}] = (*avlTree[struct{}])(nil)

type avlTree[E any] struct {
	bsTree[E]
}

func NewAVLTree[E any](linker Linker[E], opts ...TreeOption[E]) (AVLTree[E], error) {
	tree := &avlTree[E]{}
	if err := tree.init(linker, "avltree", opts...); err != nil {
		return nil, err
	}
	return tree, nil
}

func (tree *avlTree[E]) Height() uint32 {
	if tree == nil {
		return 0
	}
	return tree.root.Height()
}

/*
The right subtree R of X is higher by 2.
If R is left heavy (zig-zag), rotate R to right first, then rotate X to left.

	  X                   X                      Rl
	 / \                 / \                    /  \
	L   R   r-rotate(R) L   Rl   l-rotate(X)   X    R
	   / \  ==========>    / \   ==========>  / \  / \
	  Rl  Rr             ..   R              L  .. .. Rr
	                           \
	                           Rr
*/
func (tree *avlTree[E]) rightLeftRotate(x *Node[E]) *Node[E] {
	r := x.right
	if r.leftHeight() > r.rightHeight() {
		r = tree.rightRotate(r)
		r.right.resetHeight()
		r.resetHeight()
	}

	x = tree.leftRotate(x)
	x.left.resetHeight()
	x.resetHeight()
	return x
}

// Mirror of rightLeftRotate, the left subtree L of X is higher by 2.
func (tree *avlTree[E]) leftRightRotate(x *Node[E]) *Node[E] {
	l := x.left
	if l.rightHeight() > l.leftHeight() {
		l = tree.leftRotate(l)
		l.left.resetHeight()
		l.resetHeight()
	}

	x = tree.rightRotate(x)
	x.right.resetHeight()
	x.resetHeight()
	return x
}

// rebalance restores p1 at x and returns the new subtree head.
func (tree *avlTree[E]) rebalance(x *Node[E], factor int64) *Node[E] {
	if factor <= -2 {
		return tree.rightLeftRotate(x)
	} else if factor >= 2 {
		return tree.leftRightRotate(x)
	}
	return x
}

func (tree *avlTree[E]) Insert(elem *E, cmp Comparator[E]) error {
	if tree == nil {
		return ErrInvalidArgument
	}
	x, err := tree.link(elem, cmp)
	if err != nil {
		return err
	}
	x.height = 1
	x.color = Black
	tree.insertRebalance(x)
	return nil
}

// Walk ancestors one by one. The walk stops as soon as an ancestor height
// is unchanged, nothing above it is able to be affected.
func (tree *avlTree[E]) insertRebalance(x *Node[E]) {
	for x = x.parent; x != nil; x = x.parent {
		factor := x.balanceFactor()
		height := max(x.leftHeight(), x.rightHeight()) + 1
		if x.height == height {
			break
		}
		x.height = height
		x = tree.rebalance(x, factor)
	}
}

func (tree *avlTree[E]) Remove(elem *E) error {
	if tree == nil {
		return ErrInvalidArgument
	}
	z, err := tree.checkRemovable(elem)
	if err != nil {
		return err
	}
	tree.removeNode(z)
	return nil
}

func (tree *avlTree[E]) removeNode(z *Node[E]) {
	_, parent, _ := tree.unlink(z)
	if parent != nil {
		tree.removeRebalance(parent)
	}
	z.reset()
	tree.count--
}

// Unlike the insertion, the walk continues after a rotation because the
// rotated subtree may be lower than before.
func (tree *avlTree[E]) removeRebalance(x *Node[E]) {
	for x != nil {
		factor := x.balanceFactor()
		height := max(x.leftHeight(), x.rightHeight()) + 1

		if x.height != height {
			x.height = height
		} else if factor >= -1 && factor <= 1 {
			// Height unchanged and balanced.
			break
		}

		x = tree.rebalance(x, factor)
		x = x.parent
	}
}

func (tree *avlTree[E]) RemoveMin() (*E, error) {
	if tree == nil {
		return nil, ErrInvalidArgument
	}
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	z := tree.root.minimum()
	elem := z.owner
	tree.removeNode(z)
	return elem, nil
}

func (tree *avlTree[E]) RemoveMax() (*E, error) {
	if tree == nil {
		return nil, ErrInvalidArgument
	}
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	z := tree.root.maximum()
	elem := z.owner
	tree.removeNode(z)
	return elem, nil
}

func (tree *avlTree[E]) Release(fn func(elem *E)) error {
	if tree == nil {
		return ErrInvalidArgument
	}
	return tree.bsTree.Release(fn)
}

func (tree *avlTree[E]) Judge() error {
	if tree == nil {
		return ErrInvalidArgument
	}
	return JudgeAVLTree[E](tree)
}
