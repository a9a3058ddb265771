// Package redis keeps named snapshots in Redis hashes, one field per bucket.
package redis

import (
	"amity/internal/infra/persistence/buckets"
	"amity/pkg/domain"
	"context"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var _ domain.StateStore = (*Store)(nil)

// DefaultKeyPrefix namespaces every key written by the store.
const DefaultKeyPrefix = "amity:state:"

// Options configures the client created by NewStore.
type Options struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Store saves snapshots under <prefix>snapshot:<name> and tracks saved names
// in the <prefix>index set. The two namespaces never overlap, whatever the
// snapshot name.
type Store struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, opts Options, logger *zap.Logger) (*Store, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewWithClient(client, opts.KeyPrefix, logger), nil
}

// NewWithClient wraps an existing client. An empty prefix selects
// DefaultKeyPrefix.
func NewWithClient(client *redis.Client, prefix string, logger *zap.Logger) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, prefix: prefix, logger: logger}
}

// Key returns the hash key holding the snapshot for name.
func (s *Store) Key(name string) string {
	return s.prefix + "snapshot:" + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save replaces the hash for name atomically.
func (s *Store) Save(ctx context.Context, name string, snapshot domain.Snapshot) error {
	payloads, err := buckets.Encode(snapshot)
	if err != nil {
		return err
	}
	fields := make([]interface{}, 0, 2*len(buckets.Names))
	for _, bucket := range buckets.Names {
		fields = append(fields, bucket, payloads[bucket])
	}
	key := s.Key(name)
	if _, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields...)
		pipe.SAdd(ctx, s.indexKey(), name)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to save state %s: %w", key, err)
	}
	s.logger.Debug("snapshot saved", zap.String("key", key), zap.Int("rooms", len(snapshot.Rooms)), zap.Int("people", len(snapshot.People)))
	return nil
}

// Load reads the hash for name.
func (s *Store) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	key := s.Key(name)
	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load state %s: %w", key, err)
	}
	if len(values) == 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: %q", domain.ErrStateNotFound, name)
	}
	payloads := make(map[string][]byte, len(values))
	for field, value := range values {
		payloads[field] = []byte(value)
	}
	return buckets.Decode(payloads)
}

// Names lists saved snapshot names in lexical order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
