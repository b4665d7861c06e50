package object

// HashEq is supplied by the caller (internal/vm) so the ordered dictionary
// never needs to know how to invoke a user class's __hash__/__eq__
// dunders; for builtin scalar/tuple keys the VM's implementation simply
// delegates to Hash/Equal below.
type HashEq interface {
	Hash(key *Object) (uint64, error)
	Equal(a, b *Object) (bool, error)
}

type dictEntry struct {
	hash    uint64
	key     *Object
	value   *Object
	tomb    bool
}

// Dict is the ordered hash map used as the language's universal
// dictionary. It iterates in insertion order, tombstones deletions so
// existing iterator cursors never observe undefined behavior, and rehashes
// (compacting away tombstones) once they dominate the table.
type Dict struct {
	entries []dictEntry
	index   map[uint64][]int // hash -> slot indices, including tombstoned ones
	live    int
}

func NewDict() *Dict {
	return &Dict{index: map[uint64][]int{}}
}

func (d *Dict) Len() int { return d.live }

// Get looks up key, computing its hash via he and comparing candidates
// with he.Equal (so user __eq__ overrides are honored).
func (d *Dict) Get(he HashEq, key *Object) (*Object, bool, error) {
	h, err := he.Hash(key)
	if err != nil {
		return nil, false, err
	}
	for _, idx := range d.index[h] {
		e := &d.entries[idx]
		if e.tomb {
			continue
		}
		eq, err := he.Equal(e.key, key)
		if err != nil {
			return nil, false, err
		}
		if eq {
			return e.value, true, nil
		}
	}
	return nil, false, nil
}

func (d *Dict) Set(he HashEq, key, value *Object) error {
	h, err := he.Hash(key)
	if err != nil {
		return err
	}
	for _, idx := range d.index[h] {
		e := &d.entries[idx]
		if e.tomb {
			continue
		}
		eq, err := he.Equal(e.key, key)
		if err != nil {
			return err
		}
		if eq {
			e.value = value
			return nil
		}
	}
	idx := len(d.entries)
	d.entries = append(d.entries, dictEntry{hash: h, key: key, value: value})
	d.index[h] = append(d.index[h], idx)
	d.live++
	d.maybeRehash()
	return nil
}

// Delete tombstones key's slot rather than shrinking storage, so any
// iterator holding a slot index can re-validate to the next live slot
// without dereferencing freed storage.
func (d *Dict) Delete(he HashEq, key *Object) (bool, error) {
	h, err := he.Hash(key)
	if err != nil {
		return false, err
	}
	for _, idx := range d.index[h] {
		e := &d.entries[idx]
		if e.tomb {
			continue
		}
		eq, err := he.Equal(e.key, key)
		if err != nil {
			return false, err
		}
		if eq {
			e.tomb = true
			e.key = nil
			e.value = nil
			d.live--
			return true, nil
		}
	}
	return false, nil
}

func (d *Dict) maybeRehash() {
	if len(d.entries) < 16 || d.live*2 > len(d.entries) {
		return
	}
	fresh := make([]dictEntry, 0, d.live)
	index := map[uint64][]int{}
	for _, e := range d.entries {
		if e.tomb {
			continue
		}
		index[e.hash] = append(index[e.hash], len(fresh))
		fresh = append(fresh, e)
	}
	d.entries = fresh
	d.index = index
}

// Iterator walks live entries in insertion order. It self-validates: a
// cursor built before a mutation never dereferences a tombstoned or
// rehashed-away slot, and simply resumes from the next live slot it can
// find.
type Iterator struct {
	d   *Dict
	pos int
}

func (d *Dict) Iter() *Iterator { return &Iterator{d: d} }

// Next returns the next (key, value) pair, or ok=false when exhausted.
func (it *Iterator) Next() (key, value *Object, ok bool) {
	for it.pos < len(it.d.entries) {
		e := it.d.entries[it.pos]
		it.pos++
		if e.tomb {
			continue
		}
		return e.key, e.value, true
	}
	return nil, nil, false
}

// Keys/Values/Items return point-in-time snapshots for callers (e.g.
// sorted(), list(d), dict comprehension targets) that need a plain slice
// rather than incremental iteration.
func (d *Dict) Keys() []*Object {
	out := make([]*Object, 0, d.live)
	it := d.Iter()
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, k)
	}
	return out
}

func (d *Dict) Values() []*Object {
	out := make([]*Object, 0, d.live)
	it := d.Iter()
	for {
		_, v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}

func (d *Dict) Walk(fn func(*Object)) {
	it := d.Iter()
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		fn(k)
		fn(v)
	}
}
