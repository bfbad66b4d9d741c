package tree

import (
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
)

// bsTree is the binary search tree base shared by the AVL and RB engines.
// It owns the linkage bookkeeping, the rotation primitives and the
// navigation, none of them depends on the balancing discipline.
type bsTree[E any] struct {
	root   *Node[E]
	linker Linker[E]
	logger xlog.XLogger
	name   string
	count  int64
}

type TreeOption[E any] func(*bsTree[E]) error

func WithTreeLogger[E any](logger xlog.XLogger) TreeOption[E] {
	return func(tree *bsTree[E]) error {
		if logger == nil {
			return infra.WrapErrorStackWithMessage(ErrInvalidArgument, "nil tree logger")
		}
		tree.logger = logger
		return nil
	}
}

// WithTreeName names the tree in the logs.
func WithTreeName[E any](name string) TreeOption[E] {
	return func(tree *bsTree[E]) error {
		if len(name) == 0 {
			return infra.WrapErrorStackWithMessage(ErrInvalidArgument, "empty tree name")
		}
		tree.name = name
		return nil
	}
}

func (tree *bsTree[E]) init(linker Linker[E], name string, opts ...TreeOption[E]) error {
	if linker == nil {
		return infra.WrapErrorStackWithMessage(ErrInvalidArgument, "nil node linker")
	}
	tree.linker = linker
	tree.name = name
	for _, o := range opts {
		if err := o(tree); err != nil {
			return err
		}
	}
	if tree.logger == nil {
		tree.logger = xlog.NewNopXLogger()
	}
	tree.logger = tree.logger.Named(tree.name)
	return nil
}

func (tree *bsTree[E]) Len() int64 {
	return tree.count
}

func (tree *bsTree[E]) rootNode() *Node[E] {
	return tree.root
}

// nodeOf translates the caller's view (element) into the structural view.
func (tree *bsTree[E]) nodeOf(elem *E) *Node[E] {
	if elem == nil {
		return nil
	}
	return tree.linker(elem)
}

func (tree *bsTree[E]) Root() *E {
	return tree.root.Elem()
}

func (tree *bsTree[E]) First() *E {
	return tree.root.minimum().Elem()
}

func (tree *bsTree[E]) Last() *E {
	return tree.root.maximum().Elem()
}

func (tree *bsTree[E]) Prev(elem *E) *E {
	node := tree.nodeOf(elem)
	if !node.IsLinked() {
		return nil
	}
	return node.pred().Elem()
}

func (tree *bsTree[E]) Next(elem *E) *E {
	node := tree.nodeOf(elem)
	if !node.IsLinked() {
		return nil
	}
	return node.succ().Elem()
}

// Search descends from root, fn reports how the resident element orders
// against the searched key with the Comparator sign convention.
func (tree *bsTree[E]) Search(fn func(resident *E) int64) *E {
	if fn == nil {
		return nil
	}
	for aux := tree.root; aux != nil; {
		res := fn(aux.owner)
		if res == 0 {
			return aux.owner
		} else if res > 0 {
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return nil
}

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

Rotations change the pointers only, the caller has to recompute the
height or color of the moved nodes, children before ancestors.
*/
func (tree *bsTree[E]) leftRotate(x *Node[E]) *Node[E] {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown node direction to left-rotate")
	}
	y.parent = p
	return y
}

/*
			 |                         |
			 X                         S
			/ \     rightRotate(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *bsTree[E]) rightRotate(x *Node[E]) *Node[E] {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[xtree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown node direction to right-rotate")
	}
	y.parent = p
	return y
}

// rotate moves x down toward dir.
func (tree *bsTree[E]) rotate(x *Node[E], dir Direction) *Node[E] {
	switch dir {
	case Left:
		return tree.leftRotate(x)
	case Right:
		return tree.rightRotate(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[xtree] unknown rotate direction")
	}
}

func (tree *bsTree[E]) replaceChild(parent, old, repl *Node[E]) {
	if parent == nil {
		tree.root = repl
	} else if parent.left == old {
		parent.left = repl
	} else {
		parent.right = repl
	}
}

// link descends with cmp and attaches the element's node to the absent
// slot found. Node metadata is left for the engine to initialize.
func (tree *bsTree[E]) link(elem *E, cmp Comparator[E]) (*Node[E], error) {
	if elem == nil || cmp == nil {
		return nil, ErrInvalidArgument
	}
	node := tree.nodeOf(elem)
	if node == nil {
		return nil, ErrInvalidArgument
	}
	if node.IsLinked() {
		return nil, ErrAlreadyLinked
	}

	var parent *Node[E]
	slot := &tree.root
	for *slot != nil {
		parent = *slot
		res := cmp(parent.owner, elem)
		if /* greater */ res > 0 {
			slot = &parent.left
		} else /* less */ if res < 0 {
			slot = &parent.right
		} else /* equal */ {
			tree.logger.Debug("insert rejected, duplicate key", zap.Int64("count", tree.count))
			return nil, ErrDuplicateKey
		}
	}

	node.parent = parent
	node.left, node.right = nil, nil
	node.owner = elem
	*slot = node
	tree.count++
	return node, nil
}

/*
unlink detaches z from the tree structure.

z has at most one child: the child (or nil) is promoted into z's position.

z has two children: the succ S (leftmost of the right subtree, without
left child) is detached first by promoting its right child Sr, then S
takes z's position, links and metadata.

	    |                    |
	    Z                    S
	   / \                  / \
	  L  ..  transplant(S) L  ..
	      |  ============>     |
	      P                    P
	     / \                  / \
	    S  ..               Sr  ..
	     \
	     Sr

It returns the node now occupying the physically removed position, that
position's parent (where the upward rebalancing starts) and the color the
physically removed position had.
*/
func (tree *bsTree[E]) unlink(z *Node[E]) (child, parent *Node[E], color RBColor) {
	if z.left != nil && z.right != nil {
		old := z
		y := z.right.minimum()
		child, parent, color = y.right, y.parent, y.color
		if child != nil {
			child.parent = parent
		}
		tree.replaceChild(parent, y, child)

		if parent == old {
			parent = y
		}
		y.left, y.right, y.parent = old.left, old.right, old.parent
		y.height, y.color = old.height, old.color
		tree.replaceChild(old.parent, old, y)
		y.fixLink()
		return child, parent, color
	}

	if z.left != nil {
		child = z.left
	} else {
		child = z.right
	}
	parent, color = z.parent, z.color
	tree.replaceChild(parent, z, child)
	if child != nil {
		child.parent = parent
	}
	return child, parent, color
}

// checkRemovable guards Remove. Only the cheap linked check is done, an
// element linked into another tree is undefined.
func (tree *bsTree[E]) checkRemovable(elem *E) (*Node[E], error) {
	if elem == nil {
		return nil, ErrInvalidArgument
	}
	z := tree.nodeOf(elem)
	if !z.IsLinked() || z.owner != elem || tree.root == nil {
		tree.logger.Warn("remove an unlinked element", zap.Int64("count", tree.count))
		return nil, ErrNotLinked
	}
	return z, nil
}

// Inorder traversal to implement the DFS.
func (tree *bsTree[E]) InOrder(action func(idx int64, elem *E) bool) {
	size := tree.count
	aux := tree.root
	if action == nil || size <= 0 || aux == nil {
		return
	}

	stack := make([]*Node[E], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.owner) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (tree *bsTree[E]) PreOrder(action func(idx int64, elem *E) bool) {
	if action == nil {
		return
	}
	idx := int64(0)
	preorder(tree.root, &idx, action)
}

func preorder[E any](node *Node[E], idx *int64, action func(int64, *E) bool) bool {
	if node == nil {
		return true
	}
	if !action(*idx, node.owner) {
		return false
	}
	*idx++
	return preorder(node.left, idx, action) && preorder(node.right, idx, action)
}

func (tree *bsTree[E]) PostOrder(action func(idx int64, elem *E) bool) {
	if action == nil {
		return
	}
	idx := int64(0)
	postorder(tree.root, &idx, action)
}

func postorder[E any](node *Node[E], idx *int64, action func(int64, *E) bool) bool {
	if node == nil {
		return true
	}
	if !postorder(node.left, idx, action) || !postorder(node.right, idx, action) {
		return false
	}
	if !action(*idx, node.owner) {
		return false
	}
	*idx++
	return true
}

// Release detaches the leaves one by one without recursion, so it is safe
// for any tree shape. Each node is visited and released exactly once,
// its linkage is cleared before fn is invoked.
func (tree *bsTree[E]) Release(fn func(elem *E)) error {
	node := tree.root
	for node != nil {
		// Find one leaf.
		for {
			if node.left != nil {
				node = node.left
			} else if node.right != nil {
				node = node.right
			} else {
				break
			}
		}

		parent, elem := node.parent, node.owner
		if parent == nil {
			if node != tree.root {
				err := infra.WrapErrorStackWithMessage(ErrInconsistent, "release reached a detached node")
				tree.logger.ErrorStack(err, "release tree failed")
				return err
			}
			node.reset()
			tree.root = nil
			tree.count = 0
			if fn != nil {
				fn(elem)
			}
			return nil
		}

		// Cut off with parent.
		if parent.left == node {
			parent.left = nil
		} else if parent.right == node {
			parent.right = nil
		} else {
			err := infra.WrapErrorStackWithMessage(ErrInconsistent, "release leaf parent does not link back")
			tree.logger.ErrorStack(err, "release tree failed", zap.Int64("remains", tree.count))
			return err
		}
		node.reset()
		tree.count--
		if fn != nil {
			fn(elem)
		}
		// Upward to release.
		node = parent
	}
	tree.count = 0
	return nil
}
