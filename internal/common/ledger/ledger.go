// Package ledger persists, per user, the ids of notifications whose reminder
// email was sent successfully.
package ledger

import (
	"context"
)

// Store is the sent-notification ledger.
//
// Save merges ids into the user's ledger. It never removes an id and never
// drops ids another writer saved concurrently, so callers pass only the ids
// they want added, not a full snapshot.
type Store interface {
	Load(ctx context.Context, userID string) ([]string, error)
	Save(ctx context.Context, userID string, ids []string) error
}

// Set is an in-memory view of a loaded ledger.
type Set map[string]struct{}

func NewSet(ids []string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// dedupe drops empty and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
