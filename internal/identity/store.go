package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// ErrNoValue is returned by Store.Load when nothing is stored under the key.
var ErrNoValue = errors.New("no stored value")

// Store is durable storage for identity tokens.
// Implementations must treat Delete of a missing key as success.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// FileStore keeps tokens in a small YAML document on disk.
// Writes go through a temp file and rename so a crash never leaves a torn file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the YAML file at path.
// The file and its directory are created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("identity file path cannot be empty")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the value stored under key, or ErrNoValue.
// A file that cannot be parsed is reported as an error so the holder can log it.
func (s *FileStore) Load(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok || value == "" {
		return "", ErrNoValue
	}
	return value, nil
}

// Save writes value under key, preserving other keys.
func (s *FileStore) Save(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		// A corrupt file is replaced rather than blocking sign-in forever
		values = map[string]string{}
	}
	values[key] = value
	return s.write(values)
}

// Delete removes key. Missing keys and missing files are not errors.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		values = map[string]string{}
	}
	if _, ok := values[key]; !ok && err == nil {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse identity file: %w", err)
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode identity file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".identity-*.yml")
	if err != nil {
		return fmt.Errorf("failed to create temp identity file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set identity file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close identity file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace identity file: %w", err)
	}
	return nil
}

// RedisStore keeps tokens in Redis so several terminals share one session.
// Keys are namespaced: storefront:{namespace}:identity:{key}
type RedisStore struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisStore creates a Redis-backed store.
// Returns an error if namespace is empty.
func NewRedisStore(redisOpts *redis.Options, namespace string) (*RedisStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	return &RedisStore{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Key returns the Redis key for an identity slot.
// Pattern: storefront:{namespace}:identity:{key}
func Key(namespace, key string) string {
	return fmt.Sprintf("storefront:%s:identity:%s", namespace, key)
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection. Implements io.Closer.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Load returns the value stored under key, or ErrNoValue.
func (s *RedisStore) Load(ctx context.Context, key string) (string, error) {
	value, err := s.rdb.Get(ctx, Key(s.namespace, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoValue
		}
		return "", fmt.Errorf("failed to read identity from Redis: %w", err)
	}
	if value == "" {
		return "", ErrNoValue
	}
	return value, nil
}

// Save writes value under key with no expiry.
func (s *RedisStore) Save(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, Key(s.namespace, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write identity to Redis: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, Key(s.namespace, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete identity from Redis: %w", err)
	}
	return nil
}

// MemoryStore is a process-local store for tests and ephemeral sessions.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Load(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	if !ok || value == "" {
		return "", ErrNoValue
	}
	return value, nil
}

func (s *MemoryStore) Save(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
