package remotesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-pos-ledger/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix       = "pos:snapshot:"
	maxStoreRetries = 3
)

// ErrRemoteNewer is returned by Store when the stored snapshot is at least as new.
var ErrRemoteNewer = errors.New("remote snapshot is not older")

// RemoteStore holds one shared snapshot per sync key.
type RemoteStore interface {
	// Fetch returns nil without error when nothing was stored under key yet.
	Fetch(ctx context.Context, key string) (*model.Snapshot, error)
	// Store writes snap unless the stored snapshot is at least as new, in which case it
	// returns ErrRemoteNewer. The comparison and the write are atomic.
	Store(ctx context.Context, key string, snap model.Snapshot) error
}

// NewRedisClient parses a redis:// URL and checks connectivity.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Fetch(ctx context.Context, key string) (*model.Snapshot, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Store compares and sets inside a WATCH transaction, retrying when another writer
// touches the key in between.
func (r *RedisStore) Store(ctx context.Context, key string, snap model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	fullKey := keyPrefix + key

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var stored model.Snapshot
			// an undecodable document is overwritten
			if json.Unmarshal(current, &stored) == nil && !snap.NewerThan(&stored) {
				return ErrRemoteNewer
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxStoreRetries; i++ {
		err := r.client.Watch(ctx, txf, fullKey)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrRemoteNewer):
			return err
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return fmt.Errorf("store snapshot: %w", err)
		}
	}
	return fmt.Errorf("store snapshot: %w", redis.TxFailedErr)
}
