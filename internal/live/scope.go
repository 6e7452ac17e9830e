package live

import (
	"encoding/json"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/google/uuid"
)

// itemMarketRef picks out the fields that bind a feed item to a market.
// Order, quote and document items carry market_id; market items are keyed by
// their own id.
type itemMarketRef struct {
	ID       *uuid.UUID `json:"id"`
	MarketID *uuid.UUID `json:"market_id"`
}

// ScopeSnapshot narrows a tenant snapshot to what the actor may see.
// Company-wide roles receive the snapshot unchanged. Market-role actors keep
// only items bound to their market; foreign markets and tenant-level
// documents are stripped before the frame leaves the server.
func ScopeSnapshot(actor policy.Actor, snapshot Snapshot) (Snapshot, error) {
	if actor.SeesAllMarkets() {
		return snapshot, nil
	}

	var elements []json.RawMessage
	if len(snapshot.Items) > 0 {
		if err := json.Unmarshal(snapshot.Items, &elements); err != nil {
			return Snapshot{}, err
		}
	}

	kept := make([]json.RawMessage, 0, len(elements))
	for _, element := range elements {
		var ref itemMarketRef
		if err := json.Unmarshal(element, &ref); err != nil {
			return Snapshot{}, err
		}
		binding := ref.MarketID
		if snapshot.Collection == CollectionMarkets {
			binding = ref.ID
		}
		if binding != nil && actor.CanSeeMarket(*binding) {
			kept = append(kept, element)
		}
	}

	items, err := json.Marshal(kept)
	if err != nil {
		return Snapshot{}, err
	}
	scoped := snapshot
	scoped.Items = items
	return scoped, nil
}
