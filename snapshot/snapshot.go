// Package snapshot persists the state of a failed run for diagnosis.
//
// A State is written once, when the pipeline stops on a fatal error. Sinks
// store it as indented JSON in a directory or under a Redis key.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/katalvlaran/communities/community"
	"github.com/katalvlaran/communities/linker"
	"github.com/katalvlaran/communities/planner"
	"github.com/katalvlaran/communities/refine"
)

// ErrNotFound indicates no snapshot is stored for the run.
var ErrNotFound = errors.New("snapshot: not found")

// State is everything known about a run when it stopped.
type State struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Stage     string    `json:"stage"`
	Error     string    `json:"error"`

	Communities int        `json:"communities"`
	Islands     [][]string `json:"islands,omitempty"`

	Plan     *planner.Plan        `json:"plan,omitempty"`
	Chains   []linker.Chain       `json:"chains,omitempty"`
	Builders []*community.Builder `json:"builders,omitempty"`

	Assignment map[string]int   `json:"assignment,omitempty"`
	Unassigned []string         `json:"unassigned,omitempty"`
	Passes     []*refine.Result `json:"passes,omitempty"`
}

// Sink stores a State and returns where it went.
type Sink interface {
	Save(ctx context.Context, s *State) (string, error)
}

func prepare(s *State) ([]byte, error) {
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}

	return data, nil
}

func decode(data []byte) (*State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}

	return &s, nil
}

// Nop discards every State.
type Nop struct{}

// Save implements Sink.
func (Nop) Save(context.Context, *State) (string, error) { return "", nil }

// FileSink writes <Dir>/<run id>.json.
type FileSink struct {
	Dir string
}

// Save implements Sink.
func (f FileSink) Save(_ context.Context, s *State) (string, error) {
	data, err := prepare(s)
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	path := filepath.Join(f.Dir, s.RunID+".json")
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	return path, nil
}

// Load reads the snapshot of runID.
func (f FileSink) Load(runID string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(f.Dir, runID+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	return decode(data)
}

// RedisClient is the part of *redis.Client a RedisSink uses.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSink stores snapshots under Prefix+run ID, expiring after TTL
// (0 keeps them).
type RedisSink struct {
	Client RedisClient
	Prefix string
	TTL    time.Duration
}

// NewRedisSink opens a client for addr.
func NewRedisSink(addr, password string, db int, prefix string, ttl time.Duration) *RedisSink {
	return &RedisSink{
		Client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		Prefix: prefix,
		TTL:    ttl,
	}
}

// Save implements Sink.
func (r *RedisSink) Save(ctx context.Context, s *State) (string, error) {
	data, err := prepare(s)
	if err != nil {
		return "", err
	}
	key := r.Prefix + s.RunID
	if err = r.Client.Set(ctx, key, data, r.TTL).Err(); err != nil {
		return "", fmt.Errorf("snapshot: redis set %s: %w", key, err)
	}

	return key, nil
}

// Load reads the snapshot of runID.
func (r *RedisSink) Load(ctx context.Context, runID string) (*State, error) {
	key := r.Prefix + runID
	data, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: redis get %s: %w", key, err)
	}

	return decode(data)
}
