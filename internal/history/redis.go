package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/park285/Cheese-Board/pkg/chessdto"
	"github.com/redis/go-redis/v9"
)

const defaultSnapshotTTL = 30 * 24 * time.Hour

// RedisStore keeps one list per player under snap:player:<id>, oldest first.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// DialRedis parses a redis:// URL, connects and pings.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for redis history")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) keyPlayer(playerID string) string {
	return "snap:player:" + strings.TrimSpace(playerID)
}

func (s *RedisStore) Append(ctx context.Context, snap Snapshot) error {
	snap, err := normalize(snap)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(Encode(snap))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, s.keyPlayer(snap.PlayerID), raw)
	pipe.Expire(ctx, s.keyPlayer(snap.PlayerID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Latest(ctx context.Context, playerID string) (*Snapshot, error) {
	raw, err := s.rdb.LIndex(ctx, s.keyPlayer(playerID), -1).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap, err := decodeRaw(raw)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *RedisStore) List(ctx context.Context, playerID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	raws, err := s.rdb.LRange(ctx, s.keyPlayer(playerID), int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Snapshot, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		snap, err := decodeRaw([]byte(raws[i]))
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

func decodeRaw(raw []byte) (Snapshot, error) {
	var rec chessdto.SnapshotRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return Decode(rec)
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
