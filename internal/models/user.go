package models

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is consumed for auth only: an opaque bearer token and a role.
// Registration and token issuance live in a separate service.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex" json:"email"`
	Token     string    `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Role      string    `gorm:"size:20;not null;default:'customer'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
