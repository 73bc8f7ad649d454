package domain

type Action string

const (
	ActionCheckout     Action = "checkout"
	ActionViewOrders   Action = "orders.view"
	ActionManageOrders Action = "orders.manage"
)

const RoleAdmin = "admin"

// Actor is the authenticated caller as established by the upstream auth layer.
type Actor struct {
	UserID int64
	Roles  []string
}

func (a *Actor) HasRole(role string) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
