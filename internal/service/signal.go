package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/roamplan/roamplan/internal/domain"
)

// SignalService fans deletion/restoration events out over redis pub/sub
// so connected clients can drive the undo-toast countdown.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) PublishUndoEvent(ctx context.Context, userID string, event domain.UndoEvent) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, domain.UndoChannel(userID), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Subscribe forwards the user's undo events to out until ctx is done.
func (s *SignalService) Subscribe(ctx context.Context, userID string, out chan<- domain.UndoEvent) error {
	pubsub := s.rdb.Subscribe(ctx, domain.UndoChannel(userID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.UndoEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
