package scheduling

// Selection tracks which bucket the operator has expanded. Accordion rules:
// at most one bucket open, toggling the open bucket closes it. The zero value
// is an empty selection. Selection is not safe for concurrent use; the
// service serializes access under its own lock.
type Selection struct {
	key    string
	active bool
}

// Toggle expands the bucket with the given key, collapsing any other; if the
// key is already expanded, it collapses it instead.
func (s *Selection) Toggle(key string) {
	if s.active && s.key == key {
		s.active = false
		s.key = ""
		return
	}
	s.key = key
	s.active = true
}

// Current returns the expanded bucket key, if any. The key may no longer
// exist on the board: when the expanded bucket loses its last appointment the
// selection deliberately dangles instead of jumping to a neighbour, so the
// operator never finds a bucket open that they did not open.
func (s *Selection) Current() (string, bool) {
	if !s.active {
		return "", false
	}
	return s.key, true
}

// SelectFirst expands the chronologically first bucket. Used once, on the
// initial load; a board with no buckets leaves the selection empty.
func (s *Selection) SelectFirst(buckets []Bucket) {
	if len(buckets) == 0 {
		return
	}
	s.key = buckets[0].Key
	s.active = true
}

// Clear collapses whatever is expanded.
func (s *Selection) Clear() {
	s.key = ""
	s.active = false
}
