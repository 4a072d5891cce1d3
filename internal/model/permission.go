package model

// Permission represents a capability that can be assigned to users
type Permission struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "inventory"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Manage Inventory"
}

// Capability codes gating each class of operation
const (
	CapProducts     = "products"
	CapInventory    = "inventory"
	CapReports      = "reports"
	CapTransactions = "transactions"
	CapManageUsers  = "manage_users"

	// CapDeleteProduct is special: granted by role admin only, never
	// by permission set membership.
	CapDeleteProduct = "delete_product"
)

// Default permissions for the system
var DefaultPermissions = []Permission{
	{Code: CapProducts, Name: "Manage Products"},
	{Code: CapInventory, Name: "Manage Inventory"},
	{Code: CapReports, Name: "View Reports"},
	{Code: CapTransactions, Name: "View Transactions"},
	{Code: CapManageUsers, Name: "Manage Users"},
}

// RoleDefaultPermissions maps a role to the permission codes assigned at
// user creation. The stored set is independent afterwards and may diverge.
var RoleDefaultPermissions = map[string][]string{
	RoleAdmin:   {CapProducts, CapInventory, CapReports, CapTransactions, CapManageUsers},
	RoleManager: {CapProducts, CapInventory, CapReports, CapTransactions},
	RoleStaff:   {},
}
