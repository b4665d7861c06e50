package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// defaultHashEq wires DefaultHash/DefaultEqual up as a HashEq for tests
// that don't need internal/vm's dunder-dispatching version.
type defaultHashEq struct{}

func (defaultHashEq) Hash(o *Object) (uint64, error) { return DefaultHash(o) }
func (defaultHashEq) Equal(a, b *Object) (bool, error) { return DefaultEqual(a, b), nil }

func TestDictPreservesInsertionOrder(t *testing.T) {
	d := NewDict()
	he := defaultHashEq{}
	keys := []string{"z", "a", "m"}
	for _, k := range keys {
		require.NoError(t, d.Set(he, &Object{Kind: KindString, Str: k}, &Object{Kind: KindInt, Int: 1}))
	}
	var got []string
	it := d.Iter()
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, k.Str)
	}
	assert.Equal(t, keys, got)
}

// TestDictIteratorSurvivesDeletion exercises the tombstone contract: a
// cursor built before a delete lands on the next live slot instead
// of dereferencing freed storage.
func TestDictIteratorSurvivesDeletion(t *testing.T) {
	d := NewDict()
	he := defaultHashEq{}
	a := &Object{Kind: KindString, Str: "a"}
	b := &Object{Kind: KindString, Str: "b"}
	c := &Object{Kind: KindString, Str: "c"}
	require.NoError(t, d.Set(he, a, &Object{Kind: KindInt, Int: 1}))
	require.NoError(t, d.Set(he, b, &Object{Kind: KindInt, Int: 2}))
	require.NoError(t, d.Set(he, c, &Object{Kind: KindInt, Int: 3}))

	it := d.Iter()
	k1, _, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "a", k1.Str)

	deleted, err := d.Delete(he, b)
	require.NoError(t, err)
	require.True(t, deleted)

	var rest []string
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		rest = append(rest, k.Str)
	}
	assert.Equal(t, []string{"c"}, rest)
	assert.Equal(t, 2, d.Len())
}

func TestDictGetMissingKeyIsFalse(t *testing.T) {
	d := NewDict()
	he := defaultHashEq{}
	_, ok, err := d.Get(he, &Object{Kind: KindString, Str: "missing"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDictSetOverwritesExistingKey(t *testing.T) {
	d := NewDict()
	he := defaultHashEq{}
	key := &Object{Kind: KindInt, Int: 7}
	require.NoError(t, d.Set(he, key, &Object{Kind: KindString, Str: "first"}))
	require.NoError(t, d.Set(he, key, &Object{Kind: KindString, Str: "second"}))

	v, ok, err := d.Get(he, &Object{Kind: KindInt, Int: 7})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", v.Str)
	assert.Equal(t, 1, d.Len())
}

// TestDictIntAndEqualFloatKeyCollide documents DefaultHash's explicit
// design choice: an int key and an equal-valued float key must hash (and
// compare) the same so {1: "a"}[1.0] finds the entry.
func TestDictIntAndEqualFloatKeyCollide(t *testing.T) {
	d := NewDict()
	he := defaultHashEq{}
	require.NoError(t, d.Set(he, &Object{Kind: KindInt, Int: 1}, &Object{Kind: KindString, Str: "ok"}))

	v, ok, err := d.Get(he, &Object{Kind: KindFloat, Float: 1.0})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ok", v.Str)
}

func TestHashUnhashableContainerKind(t *testing.T) {
	_, err := DefaultHash(&Object{Kind: KindList})
	assert.ErrorIs(t, err, ErrUnhashable)
}

func TestAttrTableCopyOnWriteLeavesOriginalUnchanged(t *testing.T) {
	orig := NewAttrTable()
	orig.Set("x", &Object{Kind: KindInt, Int: 1})

	alias := orig.Copy()
	alias.Set("y", &Object{Kind: KindInt, Int: 2})

	_, ok := orig.Get("y")
	assert.False(t, ok, "mutating the copy must not affect the original")

	v, ok := orig.Get("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.Int)
}

func TestAttrTableParentLookupIsLeftToRightDepthFirst(t *testing.T) {
	grandparent := NewAttrTable()
	grandparent.Set("shared", &Object{Kind: KindString, Str: "grandparent"})

	parentA := NewAttrTable()
	parentA.AddParent(grandparent)

	parentB := NewAttrTable()
	parentB.Set("shared", &Object{Kind: KindString, Str: "parentB"})

	child := NewAttrTable()
	child.AddParent(parentA)
	child.AddParent(parentB)

	v, ok := child.Get("shared")
	require.True(t, ok)
	assert.Equal(t, "grandparent", v.Str, "parentA's chain (grandparent) must win over parentB since parentA is listed first")
}
