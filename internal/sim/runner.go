package sim

import (
	"context"
	"log"
	"time"

	"github.com/polyspin/backend/internal/config"
)

// FrameSink receives every frame the runner produces.
type FrameSink interface {
	BroadcastFrame(f Frame)
}

// StartRunner ticks every running scene on a fixed interval until ctx is
// cancelled.
func StartRunner(ctx context.Context, m *Manager, store *FrameStore, sink FrameSink, cfg *config.Config) {
	interval := time.Duration(cfg.TickIntervalMs) * time.Millisecond
	if interval <= 0 {
		log.Println("[SIM] Tick interval not positive; runner not started")
		return
	}

	log.Printf("[SIM] Runner started (interval=%s)", interval)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[SIM] Runner stopping")
				return
			case <-ticker.C:
				runOnce(ctx, m, store, sink, cfg)
			}
		}
	}()
}

func runOnce(ctx context.Context, m *Manager, store *FrameStore, sink FrameSink, cfg *config.Config) {
	for _, s := range m.snapshot() {
		f, ok := s.stepIfRunning()
		if !ok {
			continue
		}
		if sink != nil {
			sink.BroadcastFrame(f)
		}
		if cfg.FrameCacheEvery > 0 && f.Tick%uint64(cfg.FrameCacheEvery) == 0 {
			if err := store.SaveFrame(ctx, f); err != nil {
				log.Printf("[SIM] Failed to cache frame for scene %s: %v", f.Token, err)
			}
			if cfg.Verbose {
				log.Printf("[SIM] scene=%s tick=%d shapes=%d energy=%.4f", f.Token, f.Tick, len(f.Polygons)+len(f.Balls), f.Energy)
			}
		}
	}
}
