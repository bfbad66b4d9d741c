package tree

import (
	"fmt"

	"go.uber.org/multierr"
)

// Tree rule validation utilities, used by Judge and the tests only.

// JudgeAVLTree validates the AVL height rule and the linkage.
func JudgeAVLTree[E any](tree AVLTree[E]) error {
	return multierr.Combine(
		HeightViolationValidate[E](tree),
		LinkViolationValidate[E](tree),
	)
}

// JudgeRBTree validates the RB color rules and the linkage.
func JudgeRBTree[E any](tree RBTree[E]) error {
	return multierr.Combine(
		RedViolationValidate[E](tree),
		BlackViolationValidate[E](tree),
		LinkViolationValidate[E](tree),
	)
}

// HeightViolationValidate recursively computes the subtree heights.
// A subtree fails if either child fails, the children heights differ by
// more than one or the recorded height is stale.
func HeightViolationValidate[E any](tree AVLTree[E]) error {
	if _, err := avlJudge(tree.rootNode()); err != nil {
		return err
	}
	return nil
}

func avlJudge[E any](node *Node[E]) (uint32, error) {
	if node == nil {
		return 0, nil
	}
	lh, lerr := avlJudge(node.left)
	rh, rerr := avlJudge(node.right)
	if lerr != nil || rerr != nil {
		return 0, multierr.Append(lerr, rerr)
	}

	height := max(lh, rh) + 1
	if diff := int64(lh) - int64(rh); diff < -1 || diff > 1 {
		return height, fmt.Errorf("%w: balance factor %d", ErrUnbalanced, diff)
	}
	if node.height != height {
		return height, fmt.Errorf("%w: recorded height %d, actual %d", ErrUnbalanced, node.height, height)
	}
	return height, nil
}

// Inorder traversal to validate the rbtree red properties.
func RedViolationValidate[E any](tree RBTree[E]) error {
	aux := tree.rootNode()
	if aux == nil {
		return nil
	}
	if aux.isRed() {
		return fmt.Errorf("%w: red root", ErrRedViolation)
	}

	stack := make([]*Node[E], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; aux.isRed() {
			if aux.parent.isRed() || aux.left.isRed() || aux.right.isRed() {
				return ErrRedViolation
			}
		}

		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
	return nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
The black height is recursively computed per subtree, a subtree fails if
either child fails or the children black heights differ.
*/
func BlackViolationValidate[E any](tree RBTree[E]) error {
	if _, err := rbJudge(tree.rootNode()); err != nil {
		return err
	}
	return nil
}

func rbJudge[E any](node *Node[E]) (int, error) {
	if node == nil {
		// NIL leaf is black.
		return 1, nil
	}
	lbh, lerr := rbJudge(node.left)
	rbh, rerr := rbJudge(node.right)
	if lerr != nil || rerr != nil {
		return 0, multierr.Append(lerr, rerr)
	}
	if lbh != rbh {
		return 0, fmt.Errorf("%w: black height %d vs %d", ErrBlackViolation, lbh, rbh)
	}
	if node.isBlack() {
		return lbh + 1, nil
	}
	return lbh, nil
}

// LinkViolationValidate checks that every child links back to its parent,
// every node is linked to an element and the count matches.
func LinkViolationValidate[E any](tree Tree[E]) error {
	root := tree.rootNode()
	if root == nil {
		if tree.Len() != 0 {
			return fmt.Errorf("%w: empty tree with count %d", ErrInconsistent, tree.Len())
		}
		return nil
	}
	if root.parent != nil {
		return fmt.Errorf("%w: root with parent", ErrInconsistent)
	}

	count := int64(0)
	stack := make([]*Node[E], 0, 64)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, root)
	for len(stack) > 0 {
		aux := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		if !aux.IsLinked() {
			return fmt.Errorf("%w: node without element", ErrInconsistent)
		}
		for _, child := range [2]*Node[E]{aux.left, aux.right} {
			if child == nil {
				continue
			}
			if child.parent != aux {
				return fmt.Errorf("%w: child does not link back to parent", ErrInconsistent)
			}
			stack = append(stack, child)
		}
	}
	if count != tree.Len() {
		return fmt.Errorf("%w: count %d, reachable %d", ErrInconsistent, tree.Len(), count)
	}
	return nil
}
