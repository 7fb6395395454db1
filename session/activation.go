package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// 激活状态存 redis，不设 TTL：激活一次，到处可用

type ActivationStore struct {
	rdb *redis.Client
}

func NewActivationStore(rdb *redis.Client) *ActivationStore {
	return &ActivationStore{rdb: rdb}
}

type Activation struct {
	Company     string `json:"company"`
	ActivatedAt int64  `json:"iat"`
}

const activationKey = "license:activation"

func (s *ActivationStore) Activate(ctx context.Context, company string) error {
	b, _ := json.Marshal(Activation{
		Company:     company,
		ActivatedAt: time.Now().Unix(),
	})
	return s.rdb.Set(ctx, activationKey, b, 0).Err()
}

func (s *ActivationStore) Get(ctx context.Context) (*Activation, error) {
	b, err := s.rdb.Get(ctx, activationKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var a Activation
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *ActivationStore) Deactivate(ctx context.Context) error {
	return s.rdb.Del(ctx, activationKey).Err()
}
