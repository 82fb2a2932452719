package clientstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LastGame is the descriptor of the session a client visited last,
// enough to drop them straight back onto its board.
type LastGame struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
}

// Store persists per-identity convenience state. It is never
// authoritative; the ledger store is.
type Store interface {
	SaveLastGame(ctx context.Context, uid string, lastGame *LastGame) error
	LastGame(ctx context.Context, uid string) (*LastGame, error)
	ClearLastGame(ctx context.Context, uid string) error

	SaveNickname(ctx context.Context, uid, nickname string) error
	Nickname(ctx context.Context, uid string) (string, error)

	AddRecentGame(ctx context.Context, uid, gameID string) error
	RemoveRecentGame(ctx context.Context, uid, gameID string) error
	RecentGames(ctx context.Context, uid string) ([]string, error)
}

const (
	keyLastGame    = "state:%s:lastgame"
	keyNickname    = "state:%s:nickname"
	keyRecentGames = "state:%s:recent"

	stateTTL = 30 * 24 * time.Hour
)

// RedisStore is the redis-backed Store implementation
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close releases the redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SaveLastGame(ctx context.Context, uid string, lastGame *LastGame) error {
	data, err := json.Marshal(lastGame)
	if err != nil {
		return fmt.Errorf("failed to marshal last game: %w", err)
	}
	return s.client.Set(ctx, fmt.Sprintf(keyLastGame, uid), data, stateTTL).Err()
}

func (s *RedisStore) LastGame(ctx context.Context, uid string) (*LastGame, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(keyLastGame, uid)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last game: %w", err)
	}

	var lastGame LastGame
	if err := json.Unmarshal([]byte(data), &lastGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal last game: %w", err)
	}
	return &lastGame, nil
}

func (s *RedisStore) ClearLastGame(ctx context.Context, uid string) error {
	return s.client.Del(ctx, fmt.Sprintf(keyLastGame, uid)).Err()
}

func (s *RedisStore) SaveNickname(ctx context.Context, uid, nickname string) error {
	return s.client.Set(ctx, fmt.Sprintf(keyNickname, uid), nickname, stateTTL).Err()
}

func (s *RedisStore) Nickname(ctx context.Context, uid string) (string, error) {
	nickname, err := s.client.Get(ctx, fmt.Sprintf(keyNickname, uid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get nickname: %w", err)
	}
	return nickname, nil
}

func (s *RedisStore) AddRecentGame(ctx context.Context, uid, gameID string) error {
	key := fmt.Sprintf(keyRecentGames, uid)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, gameID)
	pipe.Expire(ctx, key, stateTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) RemoveRecentGame(ctx context.Context, uid, gameID string) error {
	return s.client.SRem(ctx, fmt.Sprintf(keyRecentGames, uid), gameID).Err()
}

func (s *RedisStore) RecentGames(ctx context.Context, uid string) ([]string, error) {
	games, err := s.client.SMembers(ctx, fmt.Sprintf(keyRecentGames, uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get recent games: %w", err)
	}
	return games, nil
}
