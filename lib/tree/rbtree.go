package tree

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.
// So the shortest path nodes are black nodes. Otherwise,
// the path must contain red node.
// The longest path nodes' number is 2 * shortest path nodes' number.

var _ RBTree[struct{}] = (*rbTree[struct{}])(nil)

type rbTree[E any] struct {
	bsTree[E]
}

func NewRBTree[E any](linker Linker[E], opts ...TreeOption[E]) (RBTree[E], error) {
	tree := &rbTree[E]{}
	if err := tree.init(linker, "rbtree", opts...); err != nil {
		return nil, err
	}
	return tree, nil
}

// BlackHeight counts the black nodes from root to the leftmost NIL leaf.
func (tree *rbTree[E]) BlackHeight() int {
	if tree == nil {
		return 0
	}
	depth := 0
	for aux := tree.root; aux != nil; aux = aux.left {
		if aux.isBlack() {
			depth++
		}
	}
	return depth
}

// i1: Empty rbtree, insert directly, but root node is painted to black.
func (tree *rbTree[E]) Insert(elem *E, cmp Comparator[E]) error {
	if tree == nil {
		return ErrInvalidArgument
	}
	x, err := tree.link(elem, cmp)
	if err != nil {
		return err
	}
	x.color = Red
	x.height = 0
	tree.insertRebalance(x)
	return nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: Current node X's parent P is black, hold p3 and p4. Done.

im2: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im3: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P (inner child). Rotate P to P's direction.
After rotation may be still red-violation. Here must enter im4 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im4: Handle im3 scenario, current node is the same direction as parent
(outer child). Repaint and rotate G to the opposite direction, done.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]

Finally, the root is painted black unconditionally. (p5)
*/
func (tree *rbTree[E]) insertRebalance(x *Node[E]) {
	for /* im1 */ x.parent.isRed() {
		// A red parent is never the root, so grandpa exists.
		p, gp := x.parent, x.grandpa()
		pDir := p.Direction()
		if /* im2 */ u := x.uncle(); u.isRed() {
			p.color = Black
			u.color = Black
			gp.color = Red
			x = gp
			continue
		}

		if /* im3 */ x.Direction() != pDir {
			tree.rotate(p, pDir)
			x, p = p, x // enter im4 to fix
		}

		/* im4 */
		p.color = Black
		gp.color = Red
		tree.rotate(gp, -pDir)
		break
	}
	tree.root.color = Black
}

func (tree *rbTree[E]) Remove(elem *E) error {
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

/*
r1: Current node Z has at most one child, the child replaces Z.

r2: Current node Z has left and right node.
Find Z's succ S to replace it, S takes over Z's links and color.
The physically removed position is the one S left.

	  |                    |
	  Z                    S
	 / \                  / \
	L  ..   move(S, Z)   L  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..               Sr  ..
	   \
	   Sr

r3: The physically removed position is red, remove directly, no
violation is possible.

r4: The physically removed position is black, we have to rebalance from
the replacement node (may be NIL). (black-violation)
*/
func (tree *rbTree[E]) removeNode(z *Node[E]) {
	child, parent, color := tree.unlink(z)
	if /* r4 */ color == Black {
		tree.removeRebalance(child, parent)
	}
	z.reset()
	tree.count--
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it X's sibling's child node.
Sd is the opposite direction to X and it X's sibling's child node.

rm1: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
(1) Repaint S into black, P into red.
(2) X is left node of P, left rotate P. X is right node of P, right rotate P.
(3) Re-fetch the sibling, it is black now, enter rm2-rm4.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [D]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: Current node X's sibling S, nephew node Sc and Sd are black.
Unable to satisfy p4 locally. We have to paint the S into red, then
recursive to handle P. (A red P is painted black after the loop.)

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, right rotate S.
(2) If X is right node of P, left rotate S.
(3) Repaint S into red, Sc into black
Enter into rm4 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: Current node X's sibling S is black, nephew node Sd is red.
Ignore X's parent P's color (red or black is okay)
(1) If X is left node of P, left rotate P.
(2) If X is right node of P, right rotate P.
(3) S takes P's color, P is painted black.
(4) Repaint Sd into black. Done.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[E]) removeRebalance(x, parent *Node[E]) {
	for x.isBlack() && x != tree.root {
		// X may be NIL, so the direction is decided by the parent.
		dir := Right
		if parent.left == x {
			dir = Left
		}

		sibling := parent.child(-dir)
		if /* rm1 */ sibling.isRed() {
			sibling.color = Black
			parent.color = Red
			tree.rotate(parent, dir)
			sibling = parent.child(-dir)
		}

		if /* rm2 */ sibling.left.isBlack() && sibling.right.isBlack() {
			sibling.color = Red
			x, parent = parent, parent.parent
			continue
		}

		if /* rm3 */ sibling.child(-dir).isBlack() {
			sibling.child(dir).color = Black
			sibling.color = Red
			tree.rotate(sibling, -dir)
			sibling = parent.child(-dir)
		}

		/* rm4 */
		sibling.color = parent.color
		parent.color = Black
		if sd := sibling.child(-dir); sd != nil {
			sd.color = Black
		}
		tree.rotate(parent, dir)
		x = tree.root
		break
	}
	if x != nil {
		x.color = Black
	}
}

func (tree *rbTree[E]) RemoveMin() (*E, error) {
	if tree == nil {
		return nil, ErrInvalidArgument
	}
	_min := tree.root.minimum()
	if _min == nil {
		return nil, ErrEmptyTree
	}
	elem := _min.owner
	tree.removeNode(_min)
	return elem, nil
}

func (tree *rbTree[E]) RemoveMax() (*E, error) {
	if tree == nil {
		return nil, ErrInvalidArgument
	}
	_max := tree.root.maximum()
	if _max == nil {
		return nil, ErrEmptyTree
	}
	elem := _max.owner
	tree.removeNode(_max)
	return elem, nil
}

func (tree *rbTree[E]) Release(fn func(elem *E)) error {
	if tree == nil {
		return ErrInvalidArgument
	}
	return tree.bsTree.Release(fn)
}

func (tree *rbTree[E]) Judge() error {
	if tree == nil {
		return ErrInvalidArgument
	}
	return JudgeRBTree[E](tree)
}
