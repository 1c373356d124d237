package models

import (
	"encoding/json"
	"slices"
)

// LikeSet is the set of track ids the visitor has liked.
//
// Membership is idempotent: adding an id twice keeps a single entry.
type LikeSet struct {
	ids map[int64]struct{}
}

// NewLikeSet creates a set holding ids.
func NewLikeSet(ids ...int64) LikeSet {
	s := LikeSet{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports whether id is liked.
func (s LikeSet) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of liked tracks.
func (s LikeSet) Len() int { return len(s.ids) }

// Add marks id as liked. Adding a liked id is a no-op.
func (s *LikeSet) Add(id int64) {
	if s.ids == nil {
		s.ids = make(map[int64]struct{})
	}
	s.ids[id] = struct{}{}
}

// Remove unmarks id.
func (s *LikeSet) Remove(id int64) {
	delete(s.ids, id)
}

// Toggle flips membership of id and returns whether it is now liked.
func (s *LikeSet) Toggle(id int64) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

// IDs returns the members in ascending order.
func (s LikeSet) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns an independent copy.
func (s LikeSet) Clone() LikeSet {
	return NewLikeSet(s.IDs()...)
}

// MarshalJSON encodes the set as a sorted array of ids.
func (s LikeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

// UnmarshalJSON decodes an array of ids, collapsing duplicates.
func (s *LikeSet) UnmarshalJSON(data []byte) error {
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewLikeSet(ids...)
	return nil
}
