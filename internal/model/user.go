package model

import (
	"time"

	"github.com/google/uuid"
)

// Role values accepted for User.Role.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User is a cashier or administrator. Rows are written once at registration.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time
}

func (User) TableName() string { return "users" }

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleCashier
}
