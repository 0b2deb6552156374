package ingest

// keySet is the set of accepted primary keys of one entity.
type keySet map[string]struct{}

func (s keySet) add(key string) {
	s[key] = struct{}{}
}

func (s keySet) has(key string) bool {
	_, ok := s[key]
	return ok
}
