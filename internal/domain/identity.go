package domain

import "github.com/google/uuid"

// Roles recognized by the role guard middleware.
const (
	RoleCustomer = "customer"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// Identity is the authenticated caller extracted from a bearer token.
// Token issuance lives outside this service; only verification happens here.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// IsAdmin reports whether the caller has the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// CanManageOrders reports whether the caller may drive order status transitions
func (i Identity) CanManageOrders() bool {
	return i.Role == RoleAdmin || i.Role == RoleManager
}
