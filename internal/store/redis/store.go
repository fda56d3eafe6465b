// Package redis stores records in a redis server. Collections are lists of
// JSON documents; the settings singleton is a hash.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/copydock/internal/domain"
	"github.com/MrSnakeDoc/copydock/internal/store"
)

// appendNotebook pushes ARGV[2] only if ARGV[1] is a new id.
var appendNotebook = redis.NewScript(`
if redis.call("SADD", KEYS[2], ARGV[1]) == 0 then
  return 0
end
redis.call("RPUSH", KEYS[1], ARGV[2])
return 1
`)

// ensureNotebook pushes ARGV[2] only if the notebook list is empty.
var ensureNotebook = redis.NewScript(`
if redis.call("LLEN", KEYS[1]) > 0 then
  return 0
end
redis.call("SADD", KEYS[2], ARGV[1])
redis.call("RPUSH", KEYS[1], ARGV[2])
return 1
`)

// Store handles Redis operations for every collection.
type Store struct {
	client *redis.Client
	keys   Keys
}

var _ store.Store = (*Store)(nil)

// NewStore creates a store whose keys live under prefix
// (DefaultKeyPrefix when empty). The store owns client.
func NewStore(client *redis.Client, prefix string) *Store {
	return &Store{
		client: client,
		keys:   NewKeys(prefix),
	}
}

func (s *Store) Kind() string { return "redis" }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────────────────────────────
// Status checks
// ─────────────────────────────────────────────────────────────────

func (s *Store) AddStatusCheck(ctx context.Context, rec domain.StatusCheck) error {
	return s.push(ctx, s.keys.StatusChecks(), rec)
}

func (s *Store) StatusChecks(ctx context.Context) ([]domain.StatusCheck, error) {
	raw, err := s.client.LRange(ctx, s.keys.StatusChecks(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get status checks: %w", err)
	}
	return decodeAll[domain.StatusCheck](raw)
}

// ─────────────────────────────────────────────────────────────────
// Web captures
// ─────────────────────────────────────────────────────────────────

func (s *Store) AddWebCapture(ctx context.Context, rec domain.WebCapture) error {
	if rec.TargetNotebookID == "" {
		return fmt.Errorf("web capture %s has no target notebook", rec.ID)
	}
	return s.push(ctx, s.keys.WebCaptures(), rec)
}

func (s *Store) WebCaptures(ctx context.Context, limit int) ([]domain.WebCapture, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	raw, err := s.client.LRange(ctx, s.keys.WebCaptures(), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get web captures: %w", err)
	}

	captures, err := decodeAll[domain.WebCapture](raw)
	if err != nil {
		return nil, err
	}
	// The list is oldest first
	slices.Reverse(captures)
	return captures, nil
}

func (s *Store) CountWebCaptures(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.keys.WebCaptures()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count web captures: %w", err)
	}
	return int(n), nil
}

// ─────────────────────────────────────────────────────────────────
// Notebooks
// ─────────────────────────────────────────────────────────────────

func (s *Store) AddNotebook(ctx context.Context, rec domain.Notebook) error {
	added, err := s.runNotebookScript(ctx, appendNotebook, rec)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("notebook %s: %w", rec.ID, store.ErrDuplicate)
	}
	return nil
}

func (s *Store) EnsureNotebook(ctx context.Context, rec domain.Notebook) (bool, error) {
	return s.runNotebookScript(ctx, ensureNotebook, rec)
}

func (s *Store) runNotebookScript(ctx context.Context, script *redis.Script, rec domain.Notebook) (bool, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("failed to marshal notebook: %w", err)
	}

	n, err := script.Run(ctx, s.client, []string{s.keys.Notebooks(), s.keys.NotebookIDs()}, rec.ID, data).Int()
	if err != nil {
		return false, fmt.Errorf("failed to save notebook: %w", err)
	}
	return n == 1, nil
}

func (s *Store) Notebooks(ctx context.Context) ([]domain.Notebook, error) {
	raw, err := s.client.LRange(ctx, s.keys.Notebooks(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get notebooks: %w", err)
	}
	return decodeAll[domain.Notebook](raw)
}

// ─────────────────────────────────────────────────────────────────
// Settings
// ─────────────────────────────────────────────────────────────────

func (s *Store) Settings(ctx context.Context) (domain.Settings, error) {
	values, err := s.client.HGetAll(ctx, s.keys.Settings()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return domain.Settings(values), nil
}

// UpdateSettings writes patch and reads the hash back in one MULTI/EXEC.
func (s *Store) UpdateSettings(ctx context.Context, patch map[string]string) (domain.Settings, error) {
	var all *redis.MapStringStringCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(patch) > 0 {
			pairs := make([]any, 0, len(patch)*2)
			for k, v := range patch {
				pairs = append(pairs, k, v)
			}
			pipe.HSet(ctx, s.keys.Settings(), pairs...)
		}
		all = pipe.HGetAll(ctx, s.keys.Settings())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return domain.Settings(all.Val()), nil
}

// ─────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────

func (s *Store) push(ctx context.Context, key string, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to append to %s: %w", key, err)
	}
	return nil
}

func decodeAll[T any](raw []string) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		var rec T
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
