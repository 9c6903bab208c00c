package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/verseroom/verseroom"
)

// EventService fans song events out through redis pub/sub so every node
// serving a realtime socket sees edits applied anywhere.
type EventService struct {
	rdb *redis.Client
}

func NewEventService(redisClient *redis.Client) *EventService {
	return &EventService{
		rdb: redisClient,
	}
}

func songChannel(songID int64) string {
	return fmt.Sprintf("verseroom:song:%d", songID)
}

func (s *EventService) Publish(ctx context.Context, event verseroom.Event) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, songChannel(event.SongID), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime bridges a websocket session to redis pub/sub. Each value on
// input replaces the set of songs the session listens to; decoded events
// are delivered on output until ctx ends or input closes.
func (s *EventService) Realtime(ctx context.Context, input <-chan []int64, output chan<- verseroom.Event) {
	sub := s.rdb.Subscribe(ctx)
	defer sub.Close()

	var current []string
	messages := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case songIDs, ok := <-input:
			if !ok {
				return
			}
			channels := make([]string, 0, len(songIDs))
			for _, id := range songIDs {
				channels = append(channels, songChannel(id))
			}
			if len(current) > 0 {
				if err := sub.Unsubscribe(ctx, current...); err != nil {
					slog.ErrorContext(ctx, "failed to unsubscribe",
						slog.String("error", err.Error()),
						slog.String("module", "events"),
					)
				}
			}
			if len(channels) > 0 {
				if err := sub.Subscribe(ctx, channels...); err != nil {
					slog.ErrorContext(ctx, "failed to subscribe",
						slog.String("error", err.Error()),
						slog.String("module", "events"),
					)
				}
			}
			current = channels
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event verseroom.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(ctx, "failed to decode event",
					slog.String("error", err.Error()),
					slog.String("module", "events"),
				)
				continue
			}
			output <- event
		}
	}
}
