package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Roles. SuperAdmin users have no organization and manage tenants.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSeller     = "seller"
	RoleCourier    = "courier"
)

// Sale workflow permissions, granted per user on top of the role.
const (
	PermValidateExpedition = "sales.validate_expedition"
	PermDispatch           = "sales.dispatch"
	PermDeliver            = "sales.deliver"
	PermConfirmPayment     = "sales.confirm_payment"
	PermCancelSale         = "sales.cancel"
	PermAuthorizeDiscount  = "sales.authorize_discount"
)

// User stores system users with role plus fine-grained permissions.
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index"` // nil only for super_admin
	Email          string     `gorm:"uniqueIndex;not null"`
	Name           string     `gorm:"not null"`
	PasswordHash   string     `gorm:"not null"`
	Role           string     `gorm:"type:varchar(20);not null"`
	Permissions    []string   `gorm:"type:jsonb;serializer:json"`
	// Phone in digits-only form; used to resolve inbound WhatsApp messages.
	Phone *string `gorm:"index"`
	// DefaultCommissionPct applies when a price tier uses the default commission.
	DefaultCommissionPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Active               bool            `gorm:"not null;default:true"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Organization *Organization `gorm:"foreignKey:OrganizationID"`
}

// HasPermission reports whether the user carries the named permission.
// Admins implicitly hold every sale-workflow permission.
func (u *User) HasPermission(perm string) bool {
	if u.Role == RoleAdmin || u.Role == RoleSuperAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
