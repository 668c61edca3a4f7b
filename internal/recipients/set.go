package recipients

import "statewatch/internal/directory"

// Set accumulates recipients while deduplicating by user identity and
// preserving first-insertion order, so resolution output is stable
// across runs regardless of how many sources contributed a user.
type Set struct {
	seen  map[string]struct{}
	users []directory.User
}

// NewSet returns an empty recipient set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Add inserts a user unless an identical identity is already present.
func (s *Set) Add(user directory.User) {
	if user.ID == "" {
		return
	}
	if _, dup := s.seen[user.ID]; dup {
		return
	}
	s.seen[user.ID] = struct{}{}
	s.users = append(s.users, user)
}

// AddAll inserts each user in order.
func (s *Set) AddAll(users []directory.User) {
	for _, user := range users {
		s.Add(user)
	}
}

// Contains reports whether the identity is already in the set.
func (s *Set) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of distinct recipients.
func (s *Set) Len() int { return len(s.users) }

// Users returns the recipients in insertion order. The slice is a copy.
func (s *Set) Users() []directory.User {
	out := make([]directory.User, len(s.users))
	copy(out, s.users)
	return out
}

// IDs returns just the identities in insertion order.
func (s *Set) IDs() []string {
	ids := make([]string, 0, len(s.users))
	for _, user := range s.users {
		ids = append(ids, user.ID)
	}
	return ids
}
