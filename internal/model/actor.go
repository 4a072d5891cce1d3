package model

import "github.com/google/uuid"

// Actor is the authenticated principal for a single request. It is built
// from the database on every request (never from cached token claims) so
// permission changes take effect immediately.
type Actor struct {
	ID          uuid.UUID
	Username    string
	Role        string
	Permissions []string
}

// Can reports whether the actor holds the requested capability.
// Admins pass every check. Deleting products is restricted to role admin
// regardless of the stored permission set. Otherwise the stored permission
// set alone decides.
func (a Actor) Can(capability string) bool {
	if a.Role == RoleAdmin {
		return true
	}
	if capability == CapDeleteProduct {
		return false
	}
	for _, p := range a.Permissions {
		if p == capability {
			return true
		}
	}
	return false
}
