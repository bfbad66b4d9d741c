package tree

import (
	"bytes"
	"encoding/json"
	"math"
	randv2 "math/rand"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/xlog"
)

type checkData struct {
	color RBColor
	key   int
}

func newRBTree(t testing.TB, opts ...TreeOption[element]) RBTree[element] {
	tree, err := NewRBTree[element](elementLinker, opts...)
	require.NoError(t, err)
	return tree
}

func rbtreeColors(tree RBTree[element]) []checkData {
	res := make([]checkData, 0, tree.Len())
	tree.InOrder(func(idx int64, e *element) bool {
		res = append(res, checkData{e.node.Color(), e.key})
		return true
	})
	return res
}

func depth[E any](node *Node[E]) int {
	if node == nil {
		return 0
	}
	return max(depth(node.left), depth(node.right)) + 1
}

func TestRBTree_InsertRemove(t *testing.T) {
	tree := newRBTree(t)
	elems := newElements(52, 47, 3, 35, 24)
	expected := [][]checkData{
		{{Black, 52}},
		{{Red, 47}, {Black, 52}},
		{{Red, 3}, {Black, 47}, {Red, 52}},
		{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}},
		{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}},
	}
	for i, e := range elems {
		require.NoError(t, tree.Insert(e, elementCmp))
		require.Equal(t, expected[i], rbtreeColors(tree))
		require.NoError(t, tree.Judge())
	}
	require.Equal(t, 47, tree.Root().key)
	require.Equal(t, 2, tree.BlackHeight())

	removed := []struct {
		key      int
		expected []checkData
	}{
		{24, []checkData{{Red, 3}, {Black, 35}, {Black, 47}, {Black, 52}}},
		{47, []checkData{{Black, 3}, {Black, 35}, {Black, 52}}},
		{52, []checkData{{Red, 3}, {Black, 35}}},
		{3, []checkData{{Black, 35}}},
		{35, []checkData{}},
	}
	for _, r := range removed {
		e := Find[element, int](tree, r.key, elementKeyCmp)
		require.NotNil(t, e)
		require.NoError(t, tree.Remove(e))
		require.Equal(t, r.expected, rbtreeColors(tree))
		require.NoError(t, tree.Judge())
		require.Nil(t, Find[element, int](tree, r.key, elementKeyCmp))
	}
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, 0, tree.BlackHeight())
}

func TestRBTree_RemoveMin(t *testing.T) {
	tree := newRBTree(t)
	insertAll(t, tree, newElements(52, 47, 3, 35, 24), true)

	expected := [][]checkData{
		{{Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}},
		{{Black, 35}, {Black, 47}, {Black, 52}},
		{{Black, 47}, {Red, 52}},
		{{Black, 52}},
		{},
	}
	for i, keys := range []int{3, 24, 35, 47, 52} {
		e, err := tree.RemoveMin()
		require.NoError(t, err)
		require.Equal(t, keys, e.key)
		require.Equal(t, expected[i], rbtreeColors(tree))
		require.NoError(t, tree.Judge())
	}
	_, err := tree.RemoveMin()
	require.ErrorIs(t, err, ErrEmptyTree)
}

func TestRBTree_SequentialAndReverse(t *testing.T) {
	testcases := []struct {
		name string
		keys []int
	}{
		{"ascending", lo.Range(1000)},
		{"descending", lo.Reverse(lo.Range(1000))},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := newRBTree(tt)
			elems := newElements(tc.keys...)
			insertAll(tt, tree, elems, true)
			require.Equal(tt, lo.Range(1000), inorderKeys(tree))
			// The longest path is at most twice the shortest one.
			require.LessOrEqual(tt, depth(tree.rootNode()), 2*int(math.Ceil(math.Log2(1001))))

			for i, e := range elems {
				require.NoError(tt, tree.Remove(e))
				if i%7 == 0 {
					require.NoError(tt, tree.Judge())
				}
			}
			require.Equal(tt, int64(0), tree.Len())
			require.NoError(tt, tree.Judge())
		})
	}
}

func TestRBTree_RandomInsertAndRemove(t *testing.T) {
	const total = 2000
	tree := newRBTree(t)
	keys := lo.Uniq(lo.Times(total, func(int) int {
		return randv2.Intn(total * 16)
	}))
	elems := newElements(keys...)
	insertAll(t, tree, elems, false)
	require.NoError(t, tree.Judge())
	require.Equal(t, int64(len(elems)), tree.Len())

	expected := lo.Uniq(keys)
	require.ElementsMatch(t, expected, inorderKeys(tree))
	require.IsIncreasing(t, inorderKeys(tree))

	for _, i := range randv2.Perm(len(elems)) {
		e := elems[i]
		require.Same(t, e, Find[element, int](tree, e.key, elementKeyCmp))
		require.NoError(t, tree.Remove(e))
		require.NoError(t, RedViolationValidate[element](tree))
		require.NoError(t, BlackViolationValidate[element](tree))
	}
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
}

func TestRBTree_Interleaved(t *testing.T) {
	tree := newRBTree(t)
	pool := newElements(lo.Range(512)...)
	linked := make(map[int]bool, len(pool))
	for i := 0; i < 10_000; i++ {
		e := pool[randv2.Intn(len(pool))]
		if linked[e.key] {
			require.NoError(t, tree.Remove(e))
			delete(linked, e.key)
		} else {
			require.NoError(t, tree.Insert(e, elementCmp))
			linked[e.key] = true
		}
		if i%97 == 0 {
			require.NoError(t, tree.Judge())
		}
	}
	require.NoError(t, tree.Judge())
	require.Equal(t, int64(len(linked)), tree.Len())
}

func TestRBTree_JudgeViolations(t *testing.T) {
	tree := newRBTree(t)
	elems := newElements(52, 47, 3, 35, 24)
	insertAll(t, tree, elems, true)

	root := tree.rootNode()
	root.color = Red
	require.ErrorIs(t, tree.Judge(), ErrRedViolation)
	root.color = Black

	// 3 turns black, 24 has black height 2 on the left and 1 on the right.
	elems[2].node.color = Black
	require.ErrorIs(t, tree.Judge(), ErrBlackViolation)
	require.NoError(t, RedViolationValidate[element](tree))
	elems[2].node.color = Red
	require.NoError(t, tree.Judge())

	// 24 turns red over its red children.
	elems[4].node.color = Red
	err := tree.Judge()
	require.ErrorIs(t, err, ErrRedViolation)
	require.ErrorIs(t, err, ErrBlackViolation)
}

func TestRBTree_ReleaseLogged(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
		xlog.WithXLoggerEncoder(xlog.JSON),
		xlog.WithXLoggerWriteSyncer(zapcore.AddSync(buf)),
		xlog.WithXLoggerConsoleCore(),
	)
	tree := newRBTree(t, WithTreeLogger[element](logger), WithTreeName[element]("orders"))
	elems := newElements(2, 1, 3)
	insertAll(t, tree, elems, true)

	require.ErrorIs(t, tree.Insert(&element{key: 2}, elementCmp), ErrDuplicateKey)
	require.ErrorIs(t, tree.Remove(&element{key: 2}), ErrNotLinked)

	elems[1].node.parent = &elems[2].node
	require.ErrorIs(t, tree.Release(nil), ErrInconsistent)
	require.NoError(t, logger.Sync())

	lines := lo.Map(strings.Split(strings.TrimSpace(buf.String()), "\n"), func(line string, _ int) map[string]any {
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		return m
	})
	require.Len(t, lines, 3)
	for _, line := range lines {
		require.Equal(t, "orders", line["component"])
	}
	require.Equal(t, "insert rejected, duplicate key", lines[0]["msg"])
	require.Equal(t, "remove an unlinked element", lines[1]["msg"])
	require.Equal(t, "release tree failed", lines[2]["msg"])
	require.NotEmpty(t, lines[2]["errorStack"])
}

func TestRBTree_ReleaseLarge(t *testing.T) {
	tree := newRBTree(t)
	elems := newElements(lo.Range(100_000)...)
	insertAll(t, tree, elems, false)
	require.NoError(t, tree.Judge())

	released := int64(0)
	require.NoError(t, tree.Release(func(e *element) {
		released++
	}))
	require.Equal(t, int64(100_000), released)
	for _, e := range elems {
		require.False(t, e.node.IsLinked())
	}
}

func BenchmarkRBTree_Random(b *testing.B) {
	keys := lo.Shuffle(lo.Range(b.N))
	elems := newElements(keys...)
	tree := newRBTree(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.Insert(elems[i], elementCmp)
	}
	for i := 0; i < b.N; i++ {
		_ = tree.Remove(elems[i])
	}
	b.ReportAllocs()
}

func BenchmarkRBTree_Serial(b *testing.B) {
	elems := newElements(lo.Range(b.N)...)
	tree := newRBTree(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.Insert(elems[i], elementCmp)
	}
	for i := 0; i < b.N; i++ {
		_ = Find[element, int](tree, i, elementKeyCmp)
	}
	b.ReportAllocs()
}
