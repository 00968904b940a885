package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Pakhtun2017/compliance-checker/internal/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps session state in Redis. The cookie only carries the
// sealed session ID, so destroying a session revokes it server-side.
type RedisStore struct {
	client redis.UniversalClient
	codec  *Codec
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, codec *Codec, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, codec: codec, ttl: ttl}
}

// NewRedisClient parses url and verifies the server answers a PING.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func (s *RedisStore) Get(c echo.Context) (*Session, error) {
	id, err := s.sessionID(c)
	if err != nil {
		return &Session{}, err
	}
	if id == "" {
		return &Session{}, nil
	}

	data, err := s.client.Get(c.Request().Context(), redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired or destroyed server-side
		return &Session{}, nil
	}
	if err != nil {
		return &Session{}, fmt.Errorf("session: redis get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return &Session{}, ErrInvalidSession
	}
	sess.ID = id

	return &sess, nil
}

func (s *RedisStore) Save(c echo.Context, sess *Session) error {
	ctx := c.Request().Context()

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.previousID != "" && sess.previousID != sess.ID {
		if err := s.client.Del(ctx, redisKeyPrefix+sess.previousID).Err(); err != nil {
			return fmt.Errorf("session: redis del: %w", err)
		}
		sess.previousID = ""
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, redisKeyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}

	encoded, err := s.codec.Encode([]byte(sess.ID))
	if err != nil {
		return err
	}

	setCookie(c, encoded, s.ttl)
	return nil
}

func (s *RedisStore) Destroy(c echo.Context) error {
	id, _ := s.sessionID(c)
	clearCookie(c)

	if id == "" {
		return nil
	}
	if err := s.client.Del(c.Request().Context(), redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) sessionID(c echo.Context) (string, error) {
	cookie, err := c.Cookie(utils.CookieName)
	if err != nil || cookie.Value == "" {
		return "", nil
	}

	raw, err := s.codec.Decode(cookie.Value)
	if err != nil {
		return "", ErrInvalidSession
	}

	id := string(raw)
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalidSession
	}

	return id, nil
}
