// Package idempotency replays the stored response of a write that is retried
// with the same Idempotency-Key header.
package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shrimpsizemoose/trekker/logger"

	"coachdesk-backend/internal/platform/apierr"
	"coachdesk-backend/internal/platform/auth"
)

const (
	HeaderKey      = "Idempotency-Key"
	HeaderReplayed = "Idempotent-Replayed"
	maxKeyLength   = 128
)

type Response struct {
	// RequestHash is the sha256 of the request body the response answered.
	RequestHash string
	Status      int
	ContentType string
	Body        []byte
}

type Store interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key string) (*Response, error)
	Put(ctx context.Context, key string, r Response, ttl time.Duration) error
}

// ===== redis =====

type RedisStore struct {
	redis  *redis.Client
	prefix string
}

func NewRedisStore(url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &RedisStore{redis: redis.NewClient(opt), prefix: "coachdesk:idem:"}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.redis.Ping(ctx).Err() }

func (s *RedisStore) Close() error { return s.redis.Close() }

func (s *RedisStore) Get(ctx context.Context, key string) (*Response, error) {
	values, err := s.redis.HGetAll(ctx, s.prefix+key).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	status, err := strconv.Atoi(values["status"])
	if err != nil {
		return nil, fmt.Errorf("corrupt idempotency record %s: %w", key, err)
	}
	return &Response{
		RequestHash: values["request_hash"],
		Status:      status,
		ContentType: values["content_type"],
		Body:        []byte(values["body"]),
	}, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, r Response, ttl time.Duration) error {
	pipe := s.redis.Pipeline()
	pipe.HSet(ctx, s.prefix+key, map[string]interface{}{
		"request_hash": r.RequestHash,
		"status":       r.Status,
		"content_type": r.ContentType,
		"body":         r.Body,
	})
	pipe.Expire(ctx, s.prefix+key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// ===== middleware =====

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware replays a stored response when the key was already seen for the
// same caller, method and path. Requests without the header pass through.
// Reusing a key with a different body is rejected with 422. Only non 5xx
// responses are stored. Store failures never fail the request.
func Middleware(store Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxKeyLength {
			apierr.Abort(c, apierr.Invalid("Idempotency-Key is too long"))
			return
		}

		hash, err := hashBody(c)
		if err != nil {
			apierr.Abort(c, apierr.Invalid("unreadable request body"))
			return
		}

		scoped := c.GetString(auth.CtxUserIDKey) + "|" + c.Request.Method + "|" + c.Request.URL.Path + "|" + key
		ctx := c.Request.Context()

		prev, err := store.Get(ctx, scoped)
		if err != nil {
			logger.Error.Printf("idempotency lookup failed: %v", err)
		}
		if prev != nil {
			if prev.RequestHash != hash {
				apierr.Abort(c, apierr.Unprocessable("Idempotency-Key was already used with a different request body"))
				return
			}
			c.Header(HeaderReplayed, "true")
			c.Data(prev.Status, prev.ContentType, prev.Body)
			c.Abort()
			return
		}

		cw := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = cw
		c.Next()

		status := cw.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		rec := Response{
			RequestHash: hash,
			Status:      status,
			ContentType: cw.Header().Get("Content-Type"),
			Body:        cw.buf.Bytes(),
		}
		if err := store.Put(ctx, scoped, rec, ttl); err != nil {
			logger.Error.Printf("idempotency store failed: %v", err)
		}
	}
}

// hashBody reads the request body, puts it back for the handler and returns
// its hex sha256.
func hashBody(c *gin.Context) (string, error) {
	var body []byte
	if c.Request.Body != nil {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		body = b
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
