package tree

import (
	"errors"
	"strconv"

	"github.com/benz9527/xtree/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(" + strconv.Itoa(int(c)) + ")"
}

type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Direction(" + strconv.Itoa(int(d)) + ")"
}

var (
	ErrInvalidArgument = errors.New("[xtree] invalid argument")
	ErrDuplicateKey    = errors.New("[xtree] equal key of element already exists")
	ErrNotLinked       = errors.New("[xtree] element is not linked into tree")
	ErrAlreadyLinked   = errors.New("[xtree] element is already linked into tree")
	ErrEmptyTree       = errors.New("[xtree] empty element to remove")
	ErrInconsistent    = errors.New("[xtree] tree structure inconsistent")
	ErrUnbalanced      = errors.New("[xtree] avltree height violation")
	ErrRedViolation    = errors.New("[xtree] rbtree red violation")
	ErrBlackViolation  = errors.New("[xtree] rbtree black violation")
)

// Comparator orders an element resident in the tree against an incoming one.
//  1. resident > incoming, return positive, the search turns to left part.
//  2. resident < incoming, return negative, the search turns to right part.
//  3. resident == incoming, return 0.
//
// Inverting the sign silently breaks the ordering without any failure.
type Comparator[E any] func(resident, incoming *E) int64

// KeyComparator orders a resident element against a bare key, with the
// same sign convention as Comparator.
type KeyComparator[E any, K any] func(resident *E, key K) int64

// OrderedComparator builds a Comparator from the element's ordered key.
func OrderedComparator[E any, K infra.OrderedKey](keyOf func(*E) K) Comparator[E] {
	return func(resident, incoming *E) int64 {
		return infra.CompareOrderedKey[K](keyOf(resident), keyOf(incoming))
	}
}

// OrderedKeyComparator builds a KeyComparator from the element's ordered key.
func OrderedKeyComparator[E any, K infra.OrderedKey](keyOf func(*E) K) KeyComparator[E, K] {
	return func(resident *E, key K) int64 {
		return infra.CompareOrderedKey[K](keyOf(resident), key)
	}
}

// Tree is an intrusive ordered set over caller owned elements.
// The tree never allocates or frees elements, it only owns the linkage
// embedded in them while they are inserted.
// Not thread safe.
type Tree[E any] interface {
	Len() int64
	Insert(elem *E, cmp Comparator[E]) error
	// Remove unlinks an element which must be in this tree.
	Remove(elem *E) error
	RemoveMin() (*E, error)
	RemoveMax() (*E, error)
	Search(fn func(resident *E) int64) *E
	Prev(elem *E) *E
	Next(elem *E) *E
	First() *E
	Last() *E
	Root() *E
	InOrder(action func(idx int64, elem *E) bool)
	PreOrder(action func(idx int64, elem *E) bool)
	PostOrder(action func(idx int64, elem *E) bool)
	// Release empties the tree, fn is invoked exactly once per element.
	Release(fn func(elem *E)) error
	// Judge returns nil if the balancing invariant holds.
	Judge() error
	rootNode() *Node[E]
}

type AVLTree[E any] interface {
	Tree[E]
	Height() uint32
}

type RBTree[E any] interface {
	Tree[E]
	BlackHeight() int
}

// Find searches the element whose key is equal to key.
func Find[E any, K any](tree Tree[E], key K, cmp KeyComparator[E, K]) *E {
	if tree == nil || cmp == nil {
		return nil
	}
	return tree.Search(func(resident *E) int64 {
		return cmp(resident, key)
	})
}
