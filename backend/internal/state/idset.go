package state

import (
	"encoding/json"
)

// IDSet is an insertion-ordered set of entity ids. Operations never modify
// the receiver; they return a new set.
type IDSet struct {
	ids []string
}

// NewIDSet builds a set from ids, dropping duplicates and empty strings
func NewIDSet(ids ...string) IDSet {
	var s IDSet
	for _, id := range ids {
		if id != "" && !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Contains reports whether id is a member
func (s IDSet) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Len returns the number of members
func (s IDSet) Len() int { return len(s.ids) }

// Slice returns a copy of the members in insertion order. Never nil.
func (s IDSet) Slice() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Clone returns an independent copy
func (s IDSet) Clone() IDSet {
	if s.ids == nil {
		return IDSet{}
	}
	return IDSet{ids: s.Slice()}
}

// With returns s ∪ {id}
func (s IDSet) With(id string) IDSet {
	return s.Union(NewIDSet(id))
}

// Without returns s \ {id}
func (s IDSet) Without(id string) IDSet {
	return s.Difference(NewIDSet(id))
}

// Union returns the members of s followed by members of other not already in s
func (s IDSet) Union(other IDSet) IDSet {
	out := s.Clone()
	for _, id := range other.ids {
		if !out.Contains(id) {
			out.ids = append(out.ids, id)
		}
	}
	return out
}

// Difference returns the members of s that are not in other
func (s IDSet) Difference(other IDSet) IDSet {
	out := IDSet{}
	for _, id := range s.ids {
		if !other.Contains(id) {
			out.ids = append(out.ids, id)
		}
	}
	return out
}

// Toggle removes id when present and adds it otherwise. added reports which.
func (s IDSet) Toggle(id string) (next IDSet, added bool) {
	if s.Contains(id) {
		return s.Without(id), false
	}
	return s.With(id), true
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}
