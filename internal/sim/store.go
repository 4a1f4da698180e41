package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SceneEventsChannel is the Redis pub/sub channel for scene events.
const SceneEventsChannel = "scene_events"

// ErrFrameNotCached is returned when no frame is cached for a scene.
var ErrFrameNotCached = errors.New("frame not cached")

// FrameStore caches the latest frame of each scene in Redis and publishes
// scene events. A nil client turns every call into a no-op.
type FrameStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewFrameStore(rdb *redis.Client, ttl time.Duration) *FrameStore {
	return &FrameStore{rdb: rdb, ttl: ttl}
}

func frameKey(token string) string {
	return "scene:" + token + ":frame"
}

// SaveFrame stores f under scene:<token>:frame.
func (s *FrameStore) SaveFrame(ctx context.Context, f Frame) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return s.rdb.SetEx(ctx, frameKey(f.Token), b, s.ttl).Err()
}

func (s *FrameStore) LoadFrame(ctx context.Context, token string) (*Frame, error) {
	if s == nil || s.rdb == nil {
		return nil, ErrFrameNotCached
	}
	b, err := s.rdb.Get(ctx, frameKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrFrameNotCached
	}
	if err != nil {
		return nil, err
	}
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	return &f, nil
}

func (s *FrameStore) DeleteFrame(ctx context.Context, token string) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, frameKey(token)).Err()
}

// PublishSceneEvent implements EventPublisher.
func (s *FrameStore) PublishSceneEvent(ctx context.Context, ev SceneEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, SceneEventsChannel, b).Err()
}
