package object

// Heap is the per-context arena of owning object handles plus the
// mark-and-sweep collector. One Heap belongs to exactly
// one embedder Context/Engine; objects must never cross heap boundaries.
type Heap struct {
	objects []*Object

	lastPostGC  int
	gcRunFactor float64
	maxAlloc    int

	// RootsFn is supplied by internal/vm after bootstrapping the
	// executor: it returns every object transitively reachable from
	// live executor state (value stacks, variables, kwargs stacks), the
	// current exception, every global cell across all modules, the
	// built-in type registry, and argv. The heap doesn't know about any
	// of those structures itself; it only walks the object graph once
	// RootsFn hands it a starting set.
	RootsFn func() []*Object

	allocCount int
	exhausted  bool
}

// NewHeap constructs an empty heap. gcRunFactor must be >= 1.0;
// maxAlloc <= 0 means unlimited.
func NewHeap(gcRunFactor float64, maxAlloc int) *Heap {
	if gcRunFactor < 1.0 {
		gcRunFactor = 1.0
	}
	return &Heap{gcRunFactor: gcRunFactor, maxAlloc: maxAlloc, lastPostGC: 1}
}

// ErrHeapExhausted is returned by Alloc when maxAlloc is exceeded even
// after a forced collection; the VM turns this into the pre-allocated
// MemoryError singleton rather than allocating a fresh exception
// object at the moment memory is already tight.
type ErrHeapExhausted struct{}

func (ErrHeapExhausted) Error() string { return "heap exhausted: maxAlloc exceeded" }

// Alloc registers o as owned by the heap. Threshold-triggered collection
// is deferred to ShouldCollect's safepoint (the executor's instruction
// boundary) rather than run here, where a native caller may hold
// freshly-built objects that no root can reach yet. Only the hard
// maxAlloc cap collects eagerly, pinning o itself for the duration.
func (h *Heap) Alloc(o *Object) error {
	o.heap = h
	h.objects = append(h.objects, o)
	h.allocCount++

	if h.maxAlloc > 0 && len(h.objects) > h.maxAlloc {
		o.extRefs++
		h.Collect()
		o.extRefs--
		if len(h.objects) > h.maxAlloc {
			h.exhausted = true
			return ErrHeapExhausted{}
		}
	}
	return nil
}

// ShouldCollect reports whether allocation growth has crossed the
// gcRunFactor threshold over the last post-collection live count. The
// executor checks it at instruction boundaries, where every live object
// is reachable from its roots.
func (h *Heap) ShouldCollect() bool {
	threshold := int(float64(h.lastPostGC) * h.gcRunFactor)
	if threshold < 8 {
		threshold = 8
	}
	return len(h.objects) > threshold
}

// TakeExhausted reports (and clears) whether an allocation has failed
// against maxAlloc since the last check; the VM turns a true result into
// the pre-allocated MemoryError singleton.
func (h *Heap) TakeExhausted() bool {
	e := h.exhausted
	h.exhausted = false
	return e
}

// New is a convenience that allocates and returns a zero-valued Object of
// the given kind.
func (h *Heap) New(kind Kind) *Object {
	o := &Object{Kind: kind}
	_ = h.Alloc(o)
	return o
}

// Collect runs one mark-and-sweep pass: every root from RootsFn (plus
// every object with a nonzero external refcount) is marked, the graph is
// traversed transitively, finalizers run once for anything left unmarked,
// and the live set replaces h.objects. LastPostGC is updated for the next
// threshold computation.
func (h *Heap) Collect() {
	for _, o := range h.objects {
		o.marked = false
	}

	var stack []*Object
	push := func(o *Object) {
		if o != nil && !o.marked {
			o.marked = true
			stack = append(stack, o)
		}
	}

	for _, o := range h.objects {
		if o.extRefs > 0 {
			push(o)
		}
	}
	if h.RootsFn != nil {
		for _, o := range h.RootsFn() {
			push(o)
		}
	}

	// Parent chains can cycle through user-introduced attributes; the
	// visited set bounds the table recursion the same way the mark bit
	// bounds the object graph.
	visited := map[*AttrTable]bool{}
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		walkChildren(o, push, visited)
	}

	live := h.objects[:0]
	for _, o := range h.objects {
		if o.marked {
			live = append(live, o)
			continue
		}
		runFinalizers(o)
	}
	h.objects = append([]*Object(nil), live...)
	h.lastPostGC = len(h.objects)
}

func runFinalizers(o *Object) {
	if o.finalRan {
		return
	}
	o.finalRan = true
	for _, f := range o.Finalizers {
		f.Fn(o, f.Userdata)
	}
}

// walkChildren pushes every object directly reachable from o: container
// elements, closure captures, default args, bound self, class bases, and
// attribute-table entries/parents.
func walkChildren(o *Object, push func(*Object), visited map[*AttrTable]bool) {
	switch o.Kind {
	case KindTuple, KindList:
		for _, e := range o.Items {
			push(e)
		}
	case KindDict:
		o.Dict.Walk(push)
	case KindSet:
		o.Set.Walk(push)
	case KindFunction:
		walkFunction(o.Func, push, visited)
	case KindClass:
		walkClass(o.Class, push, visited)
		if o.Attrs != nil {
			walkAttrs(o.Attrs, push, visited)
		}
	case KindInstance:
		push(o.ClassRef)
		if o.Attrs != nil {
			walkAttrs(o.Attrs, push, visited)
		}
	case KindModule:
		if o.Attrs != nil {
			walkAttrs(o.Attrs, push, visited)
		}
	case KindSlice:
		push(o.SliceLower)
		push(o.SliceUpper)
		push(o.SliceStep)
	}
}

func walkFunction(f *Function, push func(*Object), visited map[*AttrTable]bool) {
	if f == nil {
		return
	}
	push(f.Self)
	for _, p := range f.Params {
		push(p.Default)
	}
	for _, cell := range f.Captures {
		if cell != nil {
			push(cell.Value)
		}
	}
	if f.Globals != nil {
		walkAttrs(f.Globals, push, visited)
	}
}

func walkClass(c *Class, push func(*Object), visited map[*AttrTable]bool) {
	if c == nil {
		return
	}
	for _, b := range c.Bases {
		push(b)
	}
	if c.Attrs != nil {
		walkAttrs(c.Attrs, push, visited)
	}
}

func walkAttrs(t *AttrTable, push func(*Object), visited map[*AttrTable]bool) {
	if visited[t] {
		return
	}
	visited[t] = true
	t.Walk(push)
	for _, parent := range t.Parents {
		walkAttrs(parent, push, visited)
	}
}

// Len reports the current live object count (used by tests asserting
// leak-freedom and cycle collection).
func (h *Heap) Len() int { return len(h.objects) }

// Objects exposes the heap's current object set (used by tests asserting
// leak-freedom and cycle collection).
func (h *Heap) Objects() []*Object { return h.objects }
