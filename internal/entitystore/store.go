// Package entitystore implements the append-only slab arena units, cities
// and trade routes live in (§4.C, §9 "stable entity ids ... demand an
// append-only slab with tombstones rather than index-based containers").
package entitystore

// Cloneable is implemented by entity types that carry maps/slices, so
// Store.Clone can deep-copy each value instead of aliasing it across the
// original and the scratch copy (§5, §9 scratch-clone atomicity).
type Cloneable[T any] interface {
	Clone() T
}

// Store is a generic slab keyed by a monotonic 64-bit id that is never
// reused. Removal tombstones the slot rather than compacting the backing
// array, so no other id ever aliases a removed one.
type Store[T Cloneable[T]] struct {
	nextID  uint64
	slots   map[uint64]T
	order   []uint64 // insertion order, tombstoned entries skipped on iterate
	tomb    map[uint64]bool
}

func New[T Cloneable[T]]() *Store[T] {
	return &Store[T]{
		nextID: 1,
		slots:  map[uint64]T{},
		tomb:   map[uint64]bool{},
	}
}

// Insert stores v and returns its newly assigned id.
func (s *Store[T]) Insert(v T) uint64 {
	id := s.nextID
	s.nextID++
	s.slots[id] = v
	s.order = append(s.order, id)
	return id
}

// InsertAt is used when restoring a snapshot/replay that recorded explicit
// ids; it also advances nextID past id so future inserts never collide.
func (s *Store[T]) InsertAt(id uint64, v T) {
	s.slots[id] = v
	s.order = append(s.order, id)
	if id >= s.nextID {
		s.nextID = id + 1
	}
}

func (s *Store[T]) Get(id uint64) (T, bool) {
	if s.tomb[id] {
		var zero T
		return zero, false
	}
	v, ok := s.slots[id]
	return v, ok
}

func (s *Store[T]) MustGet(id uint64) T {
	v, _ := s.Get(id)
	return v
}

func (s *Store[T]) Set(id uint64, v T) bool {
	if s.tomb[id] {
		return false
	}
	if _, ok := s.slots[id]; !ok {
		return false
	}
	s.slots[id] = v
	return true
}

// Get2Mut is a convenience for mutating two disjoint entries via a caller
// supplied mutator callback, mirroring the spec's get2_mut for, e.g.,
// attacker/defender combat resolution. ids must differ.
func (s *Store[T]) Get2Mut(a, b uint64, fn func(a, b *T)) bool {
	if a == b {
		return false
	}
	va, ok1 := s.Get(a)
	vb, ok2 := s.Get(b)
	if !ok1 || !ok2 {
		return false
	}
	fn(&va, &vb)
	s.slots[a] = va
	s.slots[b] = vb
	return true
}

// Remove tombstones id and returns the removed value, if any.
func (s *Store[T]) Remove(id uint64) (T, bool) {
	v, ok := s.Get(id)
	if !ok {
		var zero T
		return zero, false
	}
	s.tomb[id] = true
	delete(s.slots, id)
	return v, true
}

// IterOrdered calls fn for every live entry in insertion order.
func (s *Store[T]) IterOrdered(fn func(id uint64, v T)) {
	for _, id := range s.order {
		if s.tomb[id] {
			continue
		}
		if v, ok := s.slots[id]; ok {
			fn(id, v)
		}
	}
}

// Len returns the count of live (non-tombstoned) entries.
func (s *Store[T]) Len() int {
	n := 0
	for _, id := range s.order {
		if !s.tomb[id] {
			if _, ok := s.slots[id]; ok {
				n++
			}
		}
	}
	return n
}

// Clone deep-copies the store's bookkeeping and copies every live value
// through T's own Clone method, which the scratch-clone atomicity strategy
// in §4.D / §9 relies on.
func (s *Store[T]) Clone() *Store[T] {
	c := &Store[T]{
		nextID: s.nextID,
		slots:  make(map[uint64]T, len(s.slots)),
		tomb:   make(map[uint64]bool, len(s.tomb)),
		order:  append([]uint64(nil), s.order...),
	}
	for k, v := range s.slots {
		c.slots[k] = v.Clone()
	}
	for k, v := range s.tomb {
		c.tomb[k] = v
	}
	return c
}
