package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"agenteval/internal/model"
)

// BackupCache mirrors the full rating state of a session into a durable
// per-user slot. It is best-effort: the evaluation flow works without it,
// and it only becomes the source of truth when the remote store has nothing.
type BackupCache interface {
	Save(ctx context.Context, snap *model.RatingSnapshot) error
	Load(ctx context.Context, userID string) (*model.RatingSnapshot, error)
	Delete(ctx context.Context, userID string) error
}

type backupCache struct {
	client *redis.Client
}

// NewBackupCache creates a Redis-backed backup cache
func NewBackupCache(client *redis.Client) BackupCache {
	return &backupCache{client: client}
}

func (c *backupCache) key(userID string) string {
	return fmt.Sprintf("backup:user:%s", userID)
}

// Save overwrites the user's slot with the snapshot. No TTL: the backup must
// outlive arbitrary gaps between sessions, like the browser storage it replaces.
func (c *backupCache) Save(ctx context.Context, snap *model.RatingSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(snap.UserID), data, 0).Err()
}

// Load returns the stored snapshot, or nil when the slot is empty
func (c *backupCache) Load(ctx context.Context, userID string) (*model.RatingSnapshot, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap model.RatingSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *backupCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, c.key(userID)).Err()
}
