package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/polyspin/backend/internal/sim"
	"github.com/redis/go-redis/v9"
)

// StartSceneEventSubscriber relays scene_events from every instance to the
// local viewers of the affected scene.
func StartSceneEventSubscriber(ctx context.Context, rdb *redis.Client, h *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; scene event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, sim.SceneEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", sim.SceneEventsChannel)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[WS] %s subscriber stopping", sim.SceneEventsChannel)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				relaySceneEvent(h, msg.Payload)
			}
		}
	}()
}

func relaySceneEvent(h *Hub, payload string) {
	var ev sim.SceneEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		log.Printf("[WS] invalid scene event payload: %v", err)
		return
	}
	if ev.SceneToken == "" {
		return
	}

	h.BroadcastToScene(ev.SceneToken, outbound{Type: "scene_event", Data: ev})
	if ev.Type == sim.EventSceneDeleted {
		h.CloseScene(ev.SceneToken)
	}
}
