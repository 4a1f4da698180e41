package sim

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFrameStoreWithoutRedis(t *testing.T) {
	ctx := context.Background()
	for name, s := range map[string]*FrameStore{
		"nil store":  nil,
		"nil client": NewFrameStore(nil, time.Hour),
	} {
		t.Run(name, func(t *testing.T) {
			if err := s.SaveFrame(ctx, Frame{Token: "SCN_A"}); err != nil {
				t.Errorf("SaveFrame: %v", err)
			}
			if _, err := s.LoadFrame(ctx, "SCN_A"); !errors.Is(err, ErrFrameNotCached) {
				t.Errorf("LoadFrame err = %v, want ErrFrameNotCached", err)
			}
			if err := s.DeleteFrame(ctx, "SCN_A"); err != nil {
				t.Errorf("DeleteFrame: %v", err)
			}
			if err := s.PublishSceneEvent(ctx, SceneEvent{Type: EventSceneCreated}); err != nil {
				t.Errorf("PublishSceneEvent: %v", err)
			}
		})
	}
}

func TestFrameKey(t *testing.T) {
	if got := frameKey("SCN_42"); got != "scene:SCN_42:frame" {
		t.Errorf("frameKey = %q", got)
	}
}
