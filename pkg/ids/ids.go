package ids

import "github.com/google/uuid"

// Generator produces globally unique row identifiers.
type Generator interface {
	NewID() string
}

// UUID issues random (v4) UUID strings.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence replays a fixed list of ids, then falls back to random UUIDs.
type Sequence struct {
	ids []string
}

func NewSequence(ids ...string) *Sequence {
	return &Sequence{ids: ids}
}

func (s *Sequence) NewID() string {
	if len(s.ids) == 0 {
		return uuid.NewString()
	}
	next := s.ids[0]
	s.ids = s.ids[1:]
	return next
}

// Valid reports whether value parses as a UUID.
func Valid(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}
