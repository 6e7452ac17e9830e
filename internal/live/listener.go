package live

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/coopmercado/coopmercado-backend/pkg/logger"
	"github.com/coopmercado/coopmercado-backend/pkg/redis"
	"github.com/google/uuid"
)

type subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *goredis.PubSub
	FeedChannel(companyID, collection string) string
}

// Listener attaches to a tenant's feed channels and forwards decoded
// snapshots. Each API stream holds its own Listener.
type Listener struct {
	broker subscriber
	logg   *logger.Logger
}

// NewListener wires a feed listener on top of the shared redis client.
func NewListener(client *redis.Client, logg *logger.Logger) (*Listener, error) {
	if client == nil {
		return nil, fmt.Errorf("listener redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("listener logger required")
	}
	return &Listener{broker: client, logg: logg}, nil
}

// Stream subscribes to the tenant's collections and delivers snapshots until
// the context is cancelled. The returned channel closes on exit.
func (l *Listener) Stream(ctx context.Context, companyID uuid.UUID, collections ...string) (<-chan Snapshot, error) {
	if len(collections) == 0 {
		collections = []string{CollectionOrders, CollectionQuotes, CollectionMarkets, CollectionDocuments}
	}
	channels := make([]string, 0, len(collections))
	for _, collection := range collections {
		channels = append(channels, l.broker.FeedChannel(companyID.String(), collection))
	}

	sub := l.broker.Subscribe(ctx, channels...)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe feed channels: %w", err)
	}

	out := make(chan Snapshot)
	go func() {
		defer close(out)
		defer sub.Close()
		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var snapshot Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snapshot); err != nil {
					l.logg.Error(ctx, "live feed payload decode failed", err)
					continue
				}
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
