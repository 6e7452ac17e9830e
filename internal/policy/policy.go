// Package policy holds the role-based access rules shared by the query layer
// and the write boundary. Every decision is a pure function of the acting
// user and the record, so both the API middleware and the services can apply
// the same checks.
package policy

import (
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/google/uuid"
)

// Actor is the authenticated principal a request acts as.
type Actor struct {
	ID        uuid.UUID
	Role      enums.Role
	CompanyID uuid.UUID
	MarketID  *uuid.UUID
}

// SeesAllMarkets reports whether the actor's role spans the whole tenant.
// Market-role users are restricted to their bound market.
func (a Actor) SeesAllMarkets() bool {
	return a.Role.IsCompanyWide()
}

// CanSeeMarket reports whether records for the given market are visible to
// the actor.
func (a Actor) CanSeeMarket(marketID uuid.UUID) bool {
	if a.SeesAllMarkets() {
		return true
	}
	return a.MarketID != nil && *a.MarketID == marketID
}

// MarketFilter returns the market id repositories must scope queries to, or
// nil when the actor sees the whole tenant. A market-role actor without a
// bound market sees nothing; callers must treat that as an empty result, and
// CanSeeMarket already returns false for every market in that case.
func (a Actor) MarketFilter() *uuid.UUID {
	if a.SeesAllMarkets() {
		return nil
	}
	return a.MarketID
}

// VisibleOrders filters tenant orders down to what the actor may see.
func VisibleOrders(actor Actor, orders []models.Order) []models.Order {
	return filterByMarket(actor, orders, func(o models.Order) *uuid.UUID { return &o.MarketID })
}

// VisibleQuotes filters tenant quotes down to what the actor may see.
func VisibleQuotes(actor Actor, quotes []models.Quote) []models.Quote {
	return filterByMarket(actor, quotes, func(q models.Quote) *uuid.UUID { return &q.MarketID })
}

// VisibleDocuments filters tenant documents down to what the actor may see.
// Documents without a market binding are tenant-level and hidden from
// market-role users.
func VisibleDocuments(actor Actor, docs []models.Document) []models.Document {
	return filterByMarket(actor, docs, func(d models.Document) *uuid.UUID { return d.MarketID })
}

func filterByMarket[T any](actor Actor, items []T, marketOf func(T) *uuid.UUID) []T {
	if actor.SeesAllMarkets() {
		return items
	}
	out := make([]T, 0, len(items))
	if actor.MarketID == nil {
		return out
	}
	for _, item := range items {
		marketID := marketOf(item)
		if marketID != nil && *marketID == *actor.MarketID {
			out = append(out, item)
		}
	}
	return out
}

// CanManageUser reports whether the actor may create, update, deactivate or
// delete the target account. Acting on your own account is always denied so
// an admin cannot lock themselves out through this path.
func CanManageUser(actor Actor, targetID uuid.UUID, targetRole enums.Role) bool {
	if actor.ID == targetID {
		return false
	}
	switch actor.Role {
	case enums.RoleSuperAdmin:
		return true
	case enums.RoleCompanyAdmin:
		return targetRole != enums.RoleSuperAdmin
	default:
		return false
	}
}

// CanAdvanceOrder reports whether the actor's role may move an order from
// current to target. Market-role users read status but never mutate it; the
// transition itself must also be legal for the lifecycle.
func CanAdvanceOrder(actor Actor, current, target enums.OrderStatus) bool {
	switch actor.Role {
	case enums.RoleSuperAdmin, enums.RoleCompanyAdmin, enums.RoleCooperative:
	default:
		return false
	}
	return current.CanTransitionTo(target)
}
