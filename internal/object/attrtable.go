package object

// AttrTable is a shared, copy-on-write, ordered name->object map with a
// parent-chain lookup rule. Multiple AttrTable values can alias the
// same underlying storage after Copy(); the first mutation on an alias
// clones it. Parents are acquired by reference, never copied, so adding a
// method to a class is visible to every instance already built from it.
type AttrTable struct {
	store   *attrStore
	owned   bool
	Parents []*AttrTable
}

type attrStore struct {
	entries map[string]*Object
	order   []string
}

func newStore() *attrStore {
	return &attrStore{entries: map[string]*Object{}}
}

// NewAttrTable returns a fresh, empty, owned table.
func NewAttrTable() *AttrTable {
	return &AttrTable{store: newStore(), owned: true}
}

// Copy returns a logical alias of t: cheap, marked not-owned. The first
// Set on the copy (or on t, afterwards) clones storage so the two no
// longer observe each other's local entries. Parent tables are shared by
// reference, not cloned.
func (t *AttrTable) Copy() *AttrTable {
	t.owned = false
	return &AttrTable{store: t.store, owned: false, Parents: append([]*AttrTable(nil), t.Parents...)}
}

func (t *AttrTable) ensureOwned() {
	if t.owned {
		return
	}
	clone := newStore()
	for _, k := range t.store.order {
		clone.entries[k] = t.store.entries[k]
		clone.order = append(clone.order, k)
	}
	t.store = clone
	t.owned = true
}

// Get looks up name in t's own entries, then left-to-right in Parents
// (the attribute-protocol lookup rule shared by attribute access and
// method resolution order).
func (t *AttrTable) Get(name string) (*Object, bool) {
	if v, ok := t.store.entries[name]; ok {
		return v, true
	}
	for _, parent := range t.Parents {
		if v, ok := parent.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// GetLocal looks up name only in t's own entries, skipping parents (used
// to implement the embedder's "skip-most-derived" base-method call).
func (t *AttrTable) GetLocal(name string) (*Object, bool) {
	v, ok := t.store.entries[name]
	return v, ok
}

// Set writes name into t's own local entries, triggering copy-on-write if
// the storage was shared.
func (t *AttrTable) Set(name string, v *Object) {
	t.ensureOwned()
	if _, exists := t.store.entries[name]; !exists {
		t.store.order = append(t.store.order, name)
	}
	t.store.entries[name] = v
}

// Delete removes name from t's own local entries, returning whether it was
// present.
func (t *AttrTable) Delete(name string) bool {
	if _, ok := t.store.entries[name]; !ok {
		return false
	}
	t.ensureOwned()
	delete(t.store.entries, name)
	for i, k := range t.store.order {
		if k == name {
			t.store.order = append(t.store.order[:i], t.store.order[i+1:]...)
			break
		}
	}
	return true
}

// AddParent appends a parent table by reference.
func (t *AttrTable) AddParent(p *AttrTable) {
	t.Parents = append(t.Parents, p)
}

// Names returns the local entry names in insertion order (parents are not
// included).
func (t *AttrTable) Names() []string {
	out := make([]string, len(t.store.order))
	copy(out, t.store.order)
	return out
}

// Walk calls fn for every local entry of t; parent tables are not
// visited. Used by the collector's reachability pass.
func (t *AttrTable) Walk(fn func(*Object)) {
	for _, k := range t.store.order {
		fn(t.store.entries[k])
	}
}
