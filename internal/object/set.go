package object

// Set is the relaxed set: same hashing/tombstone semantics as Dict, keys
// only, insertion order not guaranteed to callers.
type Set struct {
	d *Dict
}

func NewSet() *Set { return &Set{d: NewDict()} }

func (s *Set) Len() int { return s.d.Len() }

func (s *Set) Contains(he HashEq, key *Object) (bool, error) {
	_, ok, err := s.d.Get(he, key)
	return ok, err
}

func (s *Set) Add(he HashEq, key *Object) error {
	return s.d.Set(he, key, key)
}

func (s *Set) Remove(he HashEq, key *Object) (bool, error) {
	return s.d.Delete(he, key)
}

func (s *Set) Items() []*Object {
	return s.d.Keys()
}

func (s *Set) Walk(fn func(*Object)) {
	for _, k := range s.d.Keys() {
		fn(k)
	}
}

type SetIterator struct{ it *Iterator }

func (s *Set) Iter() *SetIterator { return &SetIterator{it: s.d.Iter()} }

func (it *SetIterator) Next() (*Object, bool) {
	k, _, ok := it.it.Next()
	return k, ok
}
