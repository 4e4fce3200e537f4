package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"yamdb/internal/httpapi/dto"
)

// TitleCache keeps rendered title read-shapes in Redis. The detail endpoint is
// by far the hottest read, and its rating subquery is the most expensive part
// of the request. A nil *TitleCache is a valid no-op cache, so wiring stays
// the same when Redis is not configured.
type TitleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTitleCache(addr, password string, ttl time.Duration) (*TitleCache, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &TitleCache{client: rdb, ttl: ttl}, nil
}

func titleKey(id int64) string {
	return fmt.Sprintf("title:%d", id)
}

func (c *TitleCache) Get(ctx context.Context, id int64) (*dto.TitleResponse, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, titleKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var resp dto.TitleResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c *TitleCache) Set(ctx context.Context, id int64, resp *dto.TitleResponse) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	// cache errors are not worth failing a request over
	c.client.Set(ctx, titleKey(id), data, c.ttl)
}

func (c *TitleCache) Invalidate(ctx context.Context, id int64) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, titleKey(id))
}
