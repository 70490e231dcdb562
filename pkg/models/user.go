package models

import (
	"time"
)

// Role is the closed set of user roles. Each role includes the capabilities
// of the ones below it.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleShopAdmin  Role = "shop_admin"
	RoleSuperadmin Role = "superadmin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleShopAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// AtLeastShopAdmin reports whether the role grants shop management rights,
// subject to per-shop membership.
func (r Role) AtLeastShopAdmin() bool {
	return r == RoleShopAdmin || r == RoleSuperadmin
}

type User struct {
	ID         string `bson:"id" json:"id"`
	Email      string `bson:"email" json:"email"`
	FirstName  string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName   string `bson:"last_name,omitempty" json:"last_name,omitempty"`
	ProfilePic string `bson:"profile_pic,omitempty" json:"profile_pic,omitempty"`
	Role       Role   `bson:"role" json:"role"`
	// PasswordHash is empty for accounts created through federated login;
	// such accounts cannot authenticate with a password.
	PasswordHash string `bson:"password,omitempty" json:"-"`
	// Shops mirrors the set of Shop.AdminIDs containing this user. The two
	// are kept consistent on every admin add/remove.
	Shops     []string  `bson:"shops" json:"shops"`
	IsActive  bool      `bson:"is_active" json:"is_active"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}

// AdminOf reports whether the user administers the given shop, by the
// user-side mirror. Superadmins bypass membership entirely.
func (u *User) AdminOf(shopID string) bool {
	if u.IsSuperadmin() {
		return true
	}
	if !u.Role.AtLeastShopAdmin() {
		return false
	}
	for _, id := range u.Shops {
		if id == shopID {
			return true
		}
	}
	return false
}
