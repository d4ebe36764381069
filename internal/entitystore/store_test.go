package entitystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct{ Name string }

func (w widget) Clone() widget { return w }

func TestInsertGetRemoveNeverAliases(t *testing.T) {
	s := New[widget]()
	id1 := s.Insert(widget{Name: "a"})
	id2 := s.Insert(widget{Name: "b"})
	assert.NotEqual(t, id1, id2)

	_, ok := s.Remove(id1)
	require.True(t, ok)

	id3 := s.Insert(widget{Name: "c"})
	assert.NotEqual(t, id1, id3, "removed ids must never be reused")

	_, ok = s.Get(id1)
	assert.False(t, ok)
}

func TestIterOrderedSkipsTombstones(t *testing.T) {
	s := New[widget]()
	ids := make([]uint64, 3)
	for i := range ids {
		ids[i] = s.Insert(widget{Name: string(rune('a' + i))})
	}
	s.Remove(ids[1])

	var seen []string
	s.IterOrdered(func(_ uint64, v widget) { seen = append(seen, v.Name) })
	assert.Equal(t, []string{"a", "c"}, seen)
}

func TestCloneIsIndependent(t *testing.T) {
	s := New[widget]()
	id := s.Insert(widget{Name: "a"})
	clone := s.Clone()
	clone.Set(id, widget{Name: "mutated"})

	orig, _ := s.Get(id)
	cloned, _ := clone.Get(id)
	assert.Equal(t, "a", orig.Name)
	assert.Equal(t, "mutated", cloned.Name)
}

func TestGet2Mut(t *testing.T) {
	s := New[widget]()
	a := s.Insert(widget{Name: "a"})
	b := s.Insert(widget{Name: "b"})
	ok := s.Get2Mut(a, b, func(va, vb *widget) {
		va.Name, vb.Name = vb.Name, va.Name
	})
	require.True(t, ok)
	va, _ := s.Get(a)
	vb, _ := s.Get(b)
	assert.Equal(t, "b", va.Name)
	assert.Equal(t, "a", vb.Name)
}
