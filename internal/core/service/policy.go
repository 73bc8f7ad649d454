package service

import "github.com/SiraphopSangkrit/yesweb-test-siraphop/internal/core/domain"

// CanFunc reports whether actor may perform action.
type CanFunc func(actor *domain.Actor, action domain.Action) bool

// RolePolicy lets any authenticated actor check out and read its own orders.
// Managing orders requires the admin role.
func RolePolicy(actor *domain.Actor, action domain.Action) bool {
	if actor == nil {
		return false
	}
	switch action {
	case domain.ActionCheckout, domain.ActionViewOrders:
		return true
	case domain.ActionManageOrders:
		return actor.HasRole(domain.RoleAdmin)
	}
	return false
}
