package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property-style GC reachability/boundary checks: testify
// assertions read more naturally here than repeated
// if-err-Fatalf blocks, since each case checks several independent
// facts about the same heap snapshot.
func TestHeapCollectsUnreachableObjects(t *testing.T) {
	h := NewHeap(1.0, 0)
	kept := h.New(KindInt)
	kept.Int = 1

	var root *Object
	h.RootsFn = func() []*Object { return []*Object{root} }

	root = kept
	_ = h.New(KindInt) // unreachable, collected on the next pass
	h.Collect()

	require.Equal(t, 1, h.Len(), "only the rooted object should survive collection")
	assert.Equal(t, int64(1), h.objects[0].Int)
}

func TestHeapKeepsExternallyRefcountedObjects(t *testing.T) {
	h := NewHeap(1.0, 0)
	h.RootsFn = func() []*Object { return nil }

	pinned := h.New(KindString)
	pinned.Str = "pinned"
	pinned.IncRef()

	h.Collect()

	require.Equal(t, 1, h.Len(), "an IncRef'd object must survive even with no roots")
	assert.Equal(t, "pinned", h.objects[0].Str)

	pinned.DecRef()
	h.Collect()
	assert.Equal(t, 0, h.Len(), "DecRef to zero must make the object collectible again")
}

func TestHeapAllocRespectsMaxAlloc(t *testing.T) {
	h := NewHeap(1.0, 1)
	kept := &Object{Kind: KindInt}
	h.RootsFn = func() []*Object { return []*Object{kept} }

	require.NoError(t, h.Alloc(kept))
	err := h.Alloc(&Object{Kind: KindInt})
	require.Error(t, err)
	assert.IsType(t, ErrHeapExhausted{}, err)
	assert.True(t, h.TakeExhausted())
	assert.False(t, h.TakeExhausted(), "TakeExhausted must clear the flag")
}

func TestWalkChildrenReachesListItems(t *testing.T) {
	h := NewHeap(1.0, 0)
	item := h.New(KindInt)
	item.Int = 7

	list := h.New(KindList)
	list.Items = []*Object{item}

	var seen []*Object
	walkChildren(list, func(o *Object) { seen = append(seen, o) }, map[*AttrTable]bool{})

	require.Len(t, seen, 1)
	assert.Equal(t, item, seen[0])
}
