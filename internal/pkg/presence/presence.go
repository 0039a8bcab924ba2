// Package presence mirrors which users hold at least one live socket.
package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Status is the last known presence of a user
type Status struct {
	Status   string `json:"status"`
	LastSeen int64  `json:"last_seen"`
}

// Store records presence transitions
type Store interface {
	SetOnline(ctx context.Context, userID int64) error
	SetOffline(ctx context.Context, userID int64, at time.Time) error
	OnlineUsers(ctx context.Context) ([]int64, error)
	Get(ctx context.Context, userID int64) (*Status, error)
	// Reset clears the online set; no socket survives a restart
	Reset(ctx context.Context) error
}

// RedisStore keeps presence in Redis:
//   - <prefix>:online is the set of online user ids
//   - <prefix>:presence:<id> holds {status,last_seen}
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a RedisStore
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) onlineKey() string { return fmt.Sprintf("%s:online", s.prefix) }
func (s *RedisStore) presenceKey(userID int64) string {
	return fmt.Sprintf("%s:presence:%d", s.prefix, userID)
}

func (s *RedisStore) write(ctx context.Context, userID int64, st Status) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.presenceKey(userID), b, 0).Err()
}

// SetOnline adds userID to the online set
func (s *RedisStore) SetOnline(ctx context.Context, userID int64) error {
	if err := s.client.SAdd(ctx, s.onlineKey(), userID).Err(); err != nil {
		return fmt.Errorf("failed to add online user: %w", err)
	}
	return s.write(ctx, userID, Status{Status: StatusOnline, LastSeen: time.Now().Unix()})
}

// SetOffline removes userID from the online set and records when it was last seen
func (s *RedisStore) SetOffline(ctx context.Context, userID int64, at time.Time) error {
	if err := s.client.SRem(ctx, s.onlineKey(), userID).Err(); err != nil {
		return fmt.Errorf("failed to remove online user: %w", err)
	}
	return s.write(ctx, userID, Status{Status: StatusOffline, LastSeen: at.Unix()})
}

// OnlineUsers lists the online user ids in ascending order
func (s *RedisStore) OnlineUsers(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, s.onlineKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list online users: %w", err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Get returns the presence of userID; users never seen are offline
func (s *RedisStore) Get(ctx context.Context, userID int64) (*Status, error) {
	b, err := s.client.Get(ctx, s.presenceKey(userID)).Bytes()
	if err == redis.Nil {
		return &Status{Status: StatusOffline}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}
	var st Status
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("failed to decode presence: %w", err)
	}
	return &st, nil
}

// Reset empties the online set
func (s *RedisStore) Reset(ctx context.Context) error {
	return s.client.Del(ctx, s.onlineKey()).Err()
}

// MemoryStore keeps presence in process memory. Used when Redis is disabled.
type MemoryStore struct {
	mu       sync.RWMutex
	statuses map[int64]Status
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{statuses: make(map[int64]Status)}
}

func (s *MemoryStore) SetOnline(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[userID] = Status{Status: StatusOnline, LastSeen: time.Now().Unix()}
	return nil
}

func (s *MemoryStore) SetOffline(_ context.Context, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[userID] = Status{Status: StatusOffline, LastSeen: at.Unix()}
	return nil
}

func (s *MemoryStore) OnlineUsers(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.statuses))
	for id, st := range s.statuses {
		if st.Status == StatusOnline {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[userID]
	if !ok {
		return &Status{Status: StatusOffline}, nil
	}
	return &st, nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, st := range s.statuses {
		if st.Status == StatusOnline {
			s.statuses[id] = Status{Status: StatusOffline, LastSeen: time.Now().Unix()}
		}
	}
	return nil
}
