package store

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	s := New[string, int](4)
	s.Set("a", 1)
	s.Set("b", 2)

	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, s.Has("b"))
	assert.Equal(t, 2, s.Len())

	s.Remove("a")
	_, ok = s.Get("a")
	assert.False(t, ok)

	sum := 0
	s.Each(func(_ string, v int) { sum += v })
	assert.Equal(t, 2, sum)
}

func TestStoreKeysAllowMutation(t *testing.T) {
	s := New[string, int](4)
	s.Set("a", 1)
	s.Set("b", 2)
	s.Set("c", 3)

	keys := s.Keys()
	sort.Strings(keys)
	for _, k := range keys {
		s.Remove(k)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Zero(t, s.Len())
}

func TestQueueDedupesAndFlushesInOrder(t *testing.T) {
	q := NewQueue[string](4)
	q.Push("x")
	q.Push("y")
	q.Push("x")
	assert.Equal(t, 2, q.Len())

	var got []string
	q.Flush(func(k string) { got = append(got, k) })
	assert.Equal(t, []string{"x", "y"}, got)
	assert.Zero(t, q.Len())

	q.Push("x")
	assert.Equal(t, 1, q.Len(), "flushed keys can be queued again")
}
