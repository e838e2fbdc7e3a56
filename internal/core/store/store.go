package store

// Store is a generic typed map store keyed by K.
// Not safe for concurrent use; owned by the engine loop.
type Store[K comparable, T any] struct {
	data map[K]T
}

func New[K comparable, T any](capacity int) *Store[K, T] {
	return &Store[K, T]{
		data: make(map[K]T, capacity),
	}
}

func (s *Store[K, T]) Set(key K, v T) {
	s.data[key] = v
}

func (s *Store[K, T]) Get(key K) (T, bool) {
	v, ok := s.data[key]
	return v, ok
}

func (s *Store[K, T]) Remove(key K) {
	delete(s.data, key)
}

func (s *Store[K, T]) Has(key K) bool {
	_, ok := s.data[key]
	return ok
}

func (s *Store[K, T]) Len() int {
	return len(s.data)
}

// Each visits every entry in unspecified order. fn must not add or remove keys.
func (s *Store[K, T]) Each(fn func(K, T)) {
	for k, v := range s.data {
		fn(k, v)
	}
}

// Keys returns a copy of the current keys, safe to range over while mutating.
func (s *Store[K, T]) Keys() []K {
	keys := make([]K, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
