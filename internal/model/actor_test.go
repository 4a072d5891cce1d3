package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestActorCan(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		perms      []string
		capability string
		want       bool
	}{
		{"admin passes any check", RoleAdmin, nil, CapInventory, true},
		{"admin can delete products", RoleAdmin, nil, CapDeleteProduct, true},
		{"manager with grant", RoleManager, []string{CapInventory}, CapInventory, true},
		{"manager without grant", RoleManager, []string{CapReports}, CapInventory, false},
		{"manager cannot delete products even with code in set", RoleManager, []string{CapDeleteProduct}, CapDeleteProduct, false},
		{"staff default set is empty", RoleStaff, nil, CapInventory, false},
		{"staff with explicit grant", RoleStaff, []string{CapInventory}, CapInventory, true},
		{"unknown capability denied", RoleManager, []string{CapInventory}, "shipping", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := Actor{
				ID:          uuid.New(),
				Username:    "u",
				Role:        tt.role,
				Permissions: tt.perms,
			}
			assert.Equal(t, tt.want, actor.Can(tt.capability))
		})
	}
}

func TestRoleDefaultPermissions(t *testing.T) {
	assert.Contains(t, RoleDefaultPermissions[RoleAdmin], CapManageUsers)
	assert.NotContains(t, RoleDefaultPermissions[RoleManager], CapManageUsers)
	assert.Contains(t, RoleDefaultPermissions[RoleManager], CapInventory)
	assert.Empty(t, RoleDefaultPermissions[RoleStaff])
}

func TestUserPasswordHashing(t *testing.T) {
	user := &User{Username: "alice"}
	assert.NoError(t, user.SetPassword("secret123"))
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}
