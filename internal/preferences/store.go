package preferences

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/collabtrack/server/pkg/logger"
)

// Repository loads and saves the whole preference root of one owner. The
// root maps table ids to their encoded TablePreferences.
type Repository interface {
	Load(ctx context.Context, owner string) (map[string]json.RawMessage, error)
	Save(ctx context.Context, owner string, root map[string]json.RawMessage) error
	Rename(ctx context.Context, from, to string) error
}

type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Get returns the stored preferences for table merged over defaults. Any
// load or decode failure yields defaults.
func (s *Store) Get(ctx context.Context, owner string, table TableID, defaults TablePreferences) TablePreferences {
	root, err := s.repo.Load(ctx, owner)
	if err != nil {
		logger.WarnWithUser(owner, "preferences_load_failed", map[string]interface{}{
			"table": string(table),
			"error": err.Error(),
		})
		return defaults.clone()
	}

	raw, ok := root[string(table)]
	if !ok {
		return defaults.clone()
	}

	merged := defaults.clone()
	if err := json.Unmarshal(raw, &merged); err != nil {
		logger.WarnWithUser(owner, "preferences_decode_failed", map[string]interface{}{
			"table": string(table),
			"error": err.Error(),
		})
		return defaults.clone()
	}
	return merged
}

// Set replaces the entry for table and writes the full root back in one call.
func (s *Store) Set(ctx context.Context, owner string, table TableID, prefs TablePreferences) error {
	encoded, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	root := s.loadForWrite(ctx, owner)
	root[string(table)] = encoded
	return s.repo.Save(ctx, owner, root)
}

// Reset drops the stored entry so the next Get returns defaults.
func (s *Store) Reset(ctx context.Context, owner string, table TableID) error {
	root := s.loadForWrite(ctx, owner)
	if _, ok := root[string(table)]; !ok {
		return nil
	}
	delete(root, string(table))
	return s.repo.Save(ctx, owner, root)
}

func (s *Store) Rename(ctx context.Context, from, to string) error {
	return s.repo.Rename(ctx, from, to)
}

func (s *Store) loadForWrite(ctx context.Context, owner string) map[string]json.RawMessage {
	root, err := s.repo.Load(ctx, owner)
	if err != nil {
		logger.WarnWithUser(owner, "preferences_root_replaced", map[string]interface{}{
			"error": err.Error(),
		})
		return map[string]json.RawMessage{}
	}
	if root == nil {
		return map[string]json.RawMessage{}
	}
	return root
}
