package auth

// Role is the flat capability tag carried in token claims.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ParseRole maps a claim string onto a known role, defaulting to user.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleSeller:
		return RoleSeller
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// CanManageCatalog reports whether the role may create, update or delete products.
func (r Role) CanManageCatalog() bool {
	return r == RoleSeller || r == RoleAdmin
}

// SeesAllOrders reports whether the role may read orders owned by other users.
func (r Role) SeesAllOrders() bool {
	return r == RoleSeller || r == RoleAdmin
}

// CanManageOrders reports whether the role may advance order status.
func (r Role) CanManageOrders() bool {
	return r == RoleSeller || r == RoleAdmin
}
