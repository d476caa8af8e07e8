package seen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"newsbrief/pkg/store"
)

const (
	// storeKey is where the id list lives in the key-value store.
	storeKey = "seen_article_ids"
	// maxIDs bounds the list; oldest ids are evicted first.
	maxIDs = 1000
)

// Store tracks article identifiers that have already been surfaced, so feed
// batches never repeat items across sessions. The persisted list stays
// authoritative: every call reloads before deciding.
type Store struct {
	mu sync.Mutex
	kv store.Store
}

// NewStore creates a dedup store over the given key-value backend.
func NewStore(kv store.Store) *Store {
	return &Store{kv: kv}
}

// IsSeen reports whether the id has been marked before.
func (s *Store) IsSeen(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range ids {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

// MarkSeen appends the id, evicting the oldest entries past the bound.
// Marking an already-seen id is a no-op.
func (s *Store) MarkSeen(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}

	ids = append(ids, id)
	if len(ids) > maxIDs {
		ids = ids[len(ids)-maxIDs:]
	}
	return s.save(ctx, ids)
}

func (s *Store) load(ctx context.Context) ([]string, error) {
	data, err := s.kv.Get(ctx, storeKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load seen ids: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// A corrupt list is not worth failing feed fetches over; start fresh.
		return nil, nil
	}
	return ids, nil
}

func (s *Store) save(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal seen ids: %w", err)
	}
	if err := s.kv.Set(ctx, storeKey, data); err != nil {
		return fmt.Errorf("save seen ids: %w", err)
	}
	return nil
}
