// Package redis implements chatflow.KV on Redis strings.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/meikuraledutech/chatflow"
)

// KV stores each key as a Redis string named <prefix><key>.
type KV struct {
	client goredis.UniversalClient
	prefix string
}

var _ chatflow.KV = (*KV)(nil)

// New creates a KV. prefix is optional (e.g. "chatflow:").
func New(client goredis.UniversalClient, prefix string) *KV {
	return &KV{client: client, prefix: prefix}
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("chatflow: get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *KV) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("chatflow: set %s: %w", key, err)
	}
	return nil
}
